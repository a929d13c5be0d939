package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/agentauth/auth"
	"github.com/viant/agentauth/internal/collection"
	"github.com/viant/agentauth/runtime"
	"github.com/viant/agentauth/schema"
	"github.com/viant/agentauth/turn"
	"github.com/viant/mcp-protocol/syncmap"
)

// Service runs the conversation for one or more users over a shared runtime.
type Service struct {
	runtime    runtime.Runtime
	registry   *auth.Registry
	driver     *turn.Driver
	manager    *auth.Manager
	variant    schema.PayloadVariant
	transcript *Transcript
	logger     *slog.Logger
	// sessions maps user id to the runtime session created on the user's
	// first turn; bootstrap serializes creation so concurrent first turns
	// share one session
	sessions  *syncmap.Map[string, string]
	bootstrap *collection.SyncMap[string, *sync.Mutex]
}

// Query drives one user turn, creating the runtime session on first use.
func (s *Service) Query(ctx context.Context, userID, text string) (*turn.Event, error) {
	session, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	event := s.driver.Run(ctx, session, schema.NewUserText(text), "")
	s.record(userID, text, event)
	return event, nil
}

// Resume continues a suspended turn with the credential response built from
// the correlated authorization. It satisfies endpoint.ResumeFunc.
func (s *Service) Resume(ctx context.Context, pending *auth.PendingAuthorization) (string, error) {
	if s.manager != nil {
		s.exchange(ctx, pending)
	}
	message, err := schema.EncodeResume(pending.FunctionCallID, pending.Config(), s.variant)
	if err != nil {
		return "", fmt.Errorf("failed to encode credential response: %w", err)
	}
	session := auth.Session{ID: pending.SessionID, UserID: pending.UserID}
	event := s.driver.Run(ctx, session, message, pending.InvocationID)
	if event.Kind == turn.KindError {
		return "", errors.New(event.Content)
	}
	s.record(pending.UserID, "", event)
	outcome := event.Content
	// the resumed turn may itself request another authorization; the user
	// still needs a URL to follow
	if event.Kind == turn.KindAuthRequired && event.AuthorizationURL != "" {
		outcome += "\nOpen the following URL to authorize: " + event.AuthorizationURL
	}
	return outcome, nil
}

// exchange trades the authorization response for tokens in process; used
// with the runner transport, where the agent relies on this process to hold
// credentials. Failures are not fatal: the agent still receives the
// credential response and may perform its own exchange.
func (s *Service) exchange(ctx context.Context, pending *auth.PendingAuthorization) {
	key := pending.Config().CredentialKey()
	if key == "" {
		key = pending.FunctionCallID
	}
	if _, ok := s.manager.Token(ctx, key); ok {
		return
	}
	if _, err := s.manager.Exchange(ctx, key, pending.Config().AuthResponseURI()); err != nil {
		s.logger.Warn("in-process token exchange failed", "key", key, "error", err)
	}
}

// SaveTranscript persists the conversation so far and returns its URL.
func (s *Service) SaveTranscript(ctx context.Context) (string, error) {
	if s.transcript == nil {
		return "", fmt.Errorf("transcript store is not configured")
	}
	return s.transcript.Save(ctx)
}

func (s *Service) session(ctx context.Context, userID string) (auth.Session, error) {
	mutex, _ := s.bootstrap.GetOrPut(userID, &sync.Mutex{})
	mutex.Lock()
	defer mutex.Unlock()
	if id, ok := s.sessions.Get(userID); ok {
		return auth.Session{ID: id, UserID: userID}, nil
	}
	id, err := s.runtime.CreateSession(ctx, userID)
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created", "user", userID, "session", id)
	s.sessions.Put(userID, id)
	return auth.Session{ID: id, UserID: userID}, nil
}

func (s *Service) record(userID, text string, event *turn.Event) {
	if s.transcript == nil {
		return
	}
	if text != "" {
		s.transcript.Append(userID, text)
	}
	s.transcript.Append("agent", event.Content)
}

// Option customizes the service.
type Option func(*Service)

// WithManager enables in-process token exchange on resume.
func WithManager(manager *auth.Manager) Option {
	return func(s *Service) {
		s.manager = manager
	}
}

// WithTranscript records exchanges for later saving.
func WithTranscript(transcript *Transcript) Option {
	return func(s *Service) {
		s.transcript = transcript
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a conversation service over the supplied runtime.
func New(aRuntime runtime.Runtime, registry *auth.Registry, variant schema.PayloadVariant, options ...Option) *Service {
	ret := &Service{
		runtime:   aRuntime,
		registry:  registry,
		variant:   variant,
		logger:    slog.Default(),
		sessions:  syncmap.NewMap[string, string](),
		bootstrap: collection.NewSyncMap[string, *sync.Mutex](),
	}
	for _, option := range options {
		option(ret)
	}
	ret.driver = turn.NewDriver(aRuntime, registry, ret.logger)
	return ret
}
