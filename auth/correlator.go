package auth

import (
	"context"
	"fmt"
	"net/url"
)

// Correlator matches an inbound identity-provider redirect to the suspended
// turn it belongs to and attaches the authorization response so the turn can
// be resumed.
type Correlator struct {
	registry *Registry
	// redirectURI is the exact redirect target registered with the
	// provider; the authorization response URI is rebuilt against it.
	redirectURI string
}

// Correlate consumes the pending authorization for state, rebuilds the full
// callback URL and attaches it to the stored config as the authorization
// response URI. Returns ErrNotFound on a correlation miss; no resume must be
// attempted in that case.
func (c *Correlator) Correlate(ctx context.Context, code, state string) (*PendingAuthorization, error) {
	if code == "" || state == "" {
		return nil, fmt.Errorf("code and state are required")
	}
	pending, err := c.registry.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	callback := c.redirectURI + "?code=" + url.QueryEscape(code) + "&state=" + url.QueryEscape(state)
	if err = pending.Config().SetAuthResponseURI(callback); err != nil {
		return nil, fmt.Errorf("failed to attach authorization response: %w", err)
	}
	return pending, nil
}

// NewCorrelator creates a correlator resolving callbacks against
// redirectURI (e.g. "http://127.0.0.1:8501/").
func NewCorrelator(registry *Registry, redirectURI string) *Correlator {
	return &Correlator{registry: registry, redirectURI: redirectURI}
}
