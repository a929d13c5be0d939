package chat

import (
	"context"
	"fmt"

	"github.com/viant/agentauth/auth"
	"github.com/viant/agentauth/auth/store"
	"github.com/viant/agentauth/runtime"
	"github.com/viant/agentauth/runtime/engine"
	"github.com/viant/agentauth/runtime/runner"
	"github.com/viant/agentauth/schema"
	"github.com/viant/scy/auth/authorizer"
	"golang.org/x/oauth2"
)

type Options struct {
	Engine engine.Config  `yaml:"engine,omitempty" json:"engine,omitempty" group:"engine" namespace:"engine"`
	Runner runner.Options `yaml:"runner,omitempty" json:"runner,omitempty" group:"runner" namespace:"runner"`

	UserID string `yaml:"userId,omitempty" json:"userId,omitempty" short:"u" long:"user" description:"conversation user id" default:"default-user"`

	// StoreURL persists pending authorizations across restarts; empty keeps
	// them in memory.
	StoreURL string `yaml:"storeURL,omitempty" json:"storeURL,omitempty" short:"s" long:"store" description:"pending authorization store base URL"`

	CallbackAddr string `yaml:"callbackAddr,omitempty" json:"callbackAddr,omitempty" long:"callback" description:"authorization callback listen address" default:"127.0.0.1:8501"`

	// RedirectURI is the exact redirect target registered with the identity
	// provider; derived from CallbackAddr when empty.
	RedirectURI string `yaml:"redirectURI,omitempty" json:"redirectURI,omitempty" long:"redirect" description:"registered OAuth redirect URI"`

	Payload string `yaml:"payload,omitempty" json:"payload,omitempty" long:"payload" description:"credential response payload variant" choice:"full" choice:"minimal"`

	// OAuth2ConfigURL points at a scy OAuth2 client config; enables the
	// in-process token exchange used with the runner transport.
	OAuth2ConfigURL string `yaml:"oauth2ConfigURL,omitempty" json:"oauth2ConfigURL,omitempty" short:"c" long:"config" description:"oauth2 config file"`

	// TranscriptURL is the base location conversation transcripts are
	// saved under; saving is disabled when empty.
	TranscriptURL string `yaml:"transcriptURL,omitempty" json:"transcriptURL,omitempty" long:"transcripts" description:"transcript store base URL"`

	// TokenSource authenticates engine requests when no static access
	// token is configured; set by embedding programs.
	TokenSource oauth2.TokenSource `yaml:"-" json:"-"`
}

// UsesRunner reports whether the runner transport is configured; the managed
// engine endpoint is used otherwise.
func (o *Options) UsesRunner() bool {
	return o.Runner.Command != ""
}

// Variant resolves the configured payload variant, defaulting per transport:
// the managed engine validator accepts only the reduced shape, the runner
// replays the full config.
func (o *Options) Variant() schema.PayloadVariant {
	switch o.Payload {
	case "full":
		return schema.PayloadFull
	case "minimal":
		return schema.PayloadMinimal
	}
	if o.UsesRunner() {
		return schema.PayloadFull
	}
	return schema.PayloadMinimal
}

func (o *Options) Init() {
	if o.CallbackAddr == "" {
		o.CallbackAddr = "127.0.0.1:8501"
	}
	if o.RedirectURI == "" {
		o.RedirectURI = "http://" + o.CallbackAddr + "/"
	}
	if o.UserID == "" {
		o.UserID = "default-user"
	}
}

func (o *Options) Validate() error {
	if !o.UsesRunner() && o.Engine.Resource == "" {
		return fmt.Errorf("either engine resource or runner command is required")
	}
	return nil
}

// NewRuntime builds the configured runtime transport.
func (o *Options) NewRuntime() (runtime.Runtime, error) {
	if o.UsesRunner() {
		return runner.New(&o.Runner)
	}
	var engineOptions []engine.Option
	if o.TokenSource != nil {
		engineOptions = append(engineOptions, engine.WithTokenSource(o.TokenSource))
	}
	return engine.New(&o.Engine, engineOptions...), nil
}

// NewStore builds the pending authorization store.
func (o *Options) NewStore() store.Store {
	if o.StoreURL == "" {
		return store.NewMemoryStore()
	}
	return store.NewFileStore(o.StoreURL)
}

// NewManager builds the in-process credential manager from the scy OAuth2
// config; nil when none is configured.
func (o *Options) NewManager(ctx context.Context) (*auth.Manager, error) {
	if o.OAuth2ConfigURL == "" {
		return nil, nil
	}
	anAuthorizer := authorizer.New()
	config := &authorizer.OAuthConfig{ConfigURL: o.OAuth2ConfigURL}
	if err := anAuthorizer.EnsureConfig(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to load oauth2 config: %w", err)
	}
	return auth.NewManager(config.Config), nil
}
