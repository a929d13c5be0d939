package agentauth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/viant/agentauth/auth"
	"github.com/viant/agentauth/auth/endpoint"
	"github.com/viant/agentauth/chat"
)

// Options configures the assembled service; see chat.Options for the
// individual settings.
type Options = chat.Options

// Service bundles the conversation service with the authorization callback
// endpoint for embedding in a host program.
type Service struct {
	Conversation *chat.Service
	Registry     *auth.Registry
	callback     *endpoint.Handler
	addr         string
}

// Handler returns the authorization callback handler, mounted at root.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.callback.RegisterHandlers(mux, "/")
	return mux
}

// ListenAndServe serves the callback endpoint on the configured address and
// blocks. Programs embedding the conversation elsewhere mount Handler on
// their own server instead.
func (s *Service) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.Handler())
}

// New wires the runtime transport, pending-authorization registry,
// conversation service and callback handler from options.
func New(ctx context.Context, options *Options, serviceOptions ...chat.Option) (*Service, error) {
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	aRuntime, err := options.NewRuntime()
	if err != nil {
		return nil, err
	}
	registry := auth.NewRegistry(options.NewStore())
	manager, err := options.NewManager(ctx)
	if err != nil {
		return nil, err
	}
	if manager != nil {
		serviceOptions = append(serviceOptions, chat.WithManager(manager))
	}
	if options.TranscriptURL != "" {
		serviceOptions = append(serviceOptions, chat.WithTranscript(chat.NewTranscript(options.TranscriptURL)))
	}
	conversation := chat.New(aRuntime, registry, options.Variant(), serviceOptions...)
	correlator := auth.NewCorrelator(registry, options.RedirectURI)
	callback := endpoint.New(correlator, conversation.Resume, slog.Default())
	return &Service{
		Conversation: conversation,
		Registry:     registry,
		callback:     callback,
		addr:         options.CallbackAddr,
	}, nil
}
