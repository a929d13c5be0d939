package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/syncmap"
	"github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

// expirySkew rejects tokens about to expire so a turn does not start with a
// credential that dies mid stream.
const expirySkew = 60 * time.Second

// Manager completes the credential lifecycle for the in-process runner
// integration, where the exchange happens in this process rather than inside
// the managed runtime: it caches exchanged tokens per user, refreshes them
// when possible, and exchanges the authorization response for new tokens.
type Manager struct {
	config *oauth2.Config
	tokens *syncmap.Map[string, *oauth2.Token]
}

// Token returns a cached, still valid token for key. Expired tokens with a
// refresh token are refreshed in place; otherwise the caller initiates a new
// authorization.
func (m *Manager) Token(ctx context.Context, key string) (*oauth2.Token, bool) {
	token, ok := m.tokens.Get(key)
	if !ok {
		return nil, false
	}
	if tokenValid(token) {
		return token, true
	}
	if token.RefreshToken == "" {
		m.tokens.Delete(key)
		return nil, false
	}
	refreshed, err := m.config.TokenSource(ctx, token).Token()
	if err != nil {
		m.tokens.Delete(key)
		return nil, false
	}
	m.tokens.Put(key, refreshed)
	return refreshed, true
}

// Exchange trades the authorization response URI attached by the correlator
// for tokens and caches them under key.
func (m *Manager) Exchange(ctx context.Context, key, authResponseURI string) (*oauth2.Token, error) {
	parsed, err := url.Parse(authResponseURI)
	if err != nil {
		return nil, fmt.Errorf("invalid authorization response uri: %w", err)
	}
	code := parsed.Query().Get("code")
	if code == "" {
		return nil, fmt.Errorf("authorization response carries no code")
	}
	redirectURI := strings.Split(authResponseURI, "?")[0]
	token, err := flow.Exchange(ctx, m.config, code,
		flow.WithState(parsed.Query().Get("state")),
		flow.WithRedirectURI(redirectURI))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	m.tokens.Put(key, token)
	return token, nil
}

// tokenValid checks expiry with skew; tokens without an expiry fall back to
// the exp claim of the access token when it is a JWT.
func tokenValid(token *oauth2.Token) bool {
	if token.AccessToken == "" {
		return false
	}
	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = jwtExpiry(token.AccessToken)
	}
	if expiry.IsZero() {
		return true
	}
	return time.Now().Add(expirySkew).Before(expiry)
}

func jwtExpiry(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}
	return expiry.Time
}

// NewManager creates a credential manager for the supplied OAuth2 client.
func NewManager(config *oauth2.Config) *Manager {
	return &Manager{config: config, tokens: syncmap.NewMap[string, *oauth2.Token]()}
}
