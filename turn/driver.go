// Package turn drives single agent turns against a streaming runtime and
// folds each one into exactly one outcome: final text, an authorization
// request, or an error. A suspended turn is not resumed here; resumption is
// a new externally triggered turn carrying a credential-response message.
package turn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/viant/agentauth/auth"
	"github.com/viant/agentauth/internal/collection"
	"github.com/viant/agentauth/runtime"
	"github.com/viant/agentauth/schema"
)

// Kind classifies the outcome of one driven turn.
type Kind string

const (
	KindText         Kind = "text"
	KindAuthRequired Kind = "authRequired"
	KindError        Kind = "error"
)

// State is the driver's position within one turn.
type State string

const (
	StateIdle      State = "idle"
	StateStreaming State = "streaming"
	StateCompleted State = "completed"
	StateSuspended State = "suspended"
	StateFailed    State = "failed"
)

// NoResponse is reported when a turn completes without producing any text.
const NoResponse = "No response from agent."

// authPrompt is the default user-facing content of a suspension.
const authPrompt = "Authorization required to continue."

// Event is the single outcome reported for one turn.
type Event struct {
	Kind    Kind
	Content string
	// AuthorizationURL is the URL the user must visit; set for detected
	// authorization requests only.
	AuthorizationURL string
	// Inferred marks an authorization-required outcome deduced from an
	// error message. No resumable state exists and no URL is available, so
	// the user must restart the request after authorizing out of band.
	Inferred bool
}

// Driver runs turns, detecting credential requests and registering
// suspensions. Turns against the same session are serialized; the runtime
// session is not safe for concurrent mutation.
type Driver struct {
	runtime  runtime.Runtime
	registry *auth.Registry
	logger   *slog.Logger
	sessions *collection.SyncMap[string, *sync.Mutex]
}

// Run drives one turn: a fresh user message or a credential response built
// by schema.EncodeResume. It blocks until the turn completes, suspends, or
// fails, and always releases the event stream.
func (d *Driver) Run(ctx context.Context, session auth.Session, message *schema.Message, invocationID string) *Event {
	mutex, _ := d.sessions.GetOrPut(session.ID, &sync.Mutex{})
	mutex.Lock()
	defer mutex.Unlock()

	state := StateIdle
	stream, err := d.runtime.StreamTurn(ctx, &runtime.StreamRequest{
		UserID:       session.UserID,
		SessionID:    session.ID,
		Message:      message,
		InvocationID: invocationID,
	})
	if err != nil {
		return d.failed(session, err)
	}
	defer stream.Close()
	state = StateStreaming

	var texts []string
	for state == StateStreaming {
		event, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			state = StateCompleted
			break
		}
		if err != nil {
			return d.failed(session, err)
		}
		// text extraction and credential-request detection are independent
		// passes over the same event
		texts = append(texts, event.Texts()...)
		request := schema.Detect(event)
		if request == nil {
			continue
		}
		pending, err := d.registry.Register(ctx, request, session)
		if err != nil {
			// without the record the redirect could never be correlated:
			// fatal to this turn, the user has to retry
			d.logger.Error("failed to save pending authorization", "session", session.ID, "error", err)
			return &Event{Kind: KindError, Content: "Authorization could not be saved, please retry: " + err.Error()}
		}
		// suspended: stop consuming, the deferred Close releases the rest
		// of the stream
		d.logger.Info("turn suspended awaiting authorization",
			"session", session.ID, "call", pending.FunctionCallID, "invocation", pending.InvocationID)
		content := strings.Join(texts, "\n")
		if content == "" {
			content = authPrompt
		}
		return &Event{Kind: KindAuthRequired, Content: content, AuthorizationURL: request.Config.AuthURI()}
	}

	content := strings.Join(texts, "\n")
	if content == "" {
		content = NoResponse
	}
	return &Event{Kind: KindText, Content: content}
}

// failed classifies a runtime error: messages hinting at an authorization
// problem surface as an inferred authorization requirement, everything else
// as a generic error.
func (d *Driver) failed(session auth.Session, err error) *Event {
	message := err.Error()
	lower := strings.ToLower(message)
	if strings.Contains(lower, "oauth") || strings.Contains(lower, "auth") {
		d.logger.Info("turn failed with authorization hint", "session", session.ID, "error", err)
		return &Event{Kind: KindAuthRequired, Inferred: true, Content: "Authorization required: " + message}
	}
	d.logger.Error("turn failed", "session", session.ID, "error", err)
	return &Event{Kind: KindError, Content: message}
}

// NewDriver creates a turn driver.
func NewDriver(aRuntime runtime.Runtime, registry *auth.Registry, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		runtime:  aRuntime,
		registry: registry,
		logger:   logger,
		sessions: collection.NewSyncMap[string, *sync.Mutex](),
	}
}
