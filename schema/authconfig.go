package schema

import "fmt"

// AuthConfig is the provider- and scheme-specific authorization payload
// attached to a credential request. It is treated as opaque: the only
// permitted mutation is attaching the authorization response URI once the
// identity provider redirects back. Reads tolerate both snake_case and
// camelCase keying; the mutation mirrors whichever casing the object
// arrived with.
type AuthConfig struct {
	data map[string]any
}

// NewAuthConfig wraps a decoded authorization config object.
func NewAuthConfig(data map[string]any) *AuthConfig {
	if data == nil {
		data = map[string]any{}
	}
	return &AuthConfig{data: data}
}

// Data exposes the underlying object for full-passthrough encoding and
// persistence.
func (c *AuthConfig) Data() map[string]any {
	return c.data
}

// exchanged returns the exchangedAuthCredential node and whether the
// config keys its fields in snake_case.
func (c *AuthConfig) exchanged() (map[string]any, bool, bool) {
	if node, ok := objectField(c.data, "exchanged_auth_credential"); ok {
		return node, true, true
	}
	if node, ok := objectField(c.data, "exchangedAuthCredential"); ok {
		return node, false, true
	}
	return nil, false, false
}

func (c *AuthConfig) oauth2() (map[string]any, bool, bool) {
	exchanged, snake, ok := c.exchanged()
	if !ok {
		return nil, false, false
	}
	node, ok := objectField(exchanged, "oauth2")
	return node, snake, ok
}

// AuthURI returns the authorization URL the user must visit, or empty.
func (c *AuthConfig) AuthURI() string {
	oauth, _, ok := c.oauth2()
	if !ok {
		return ""
	}
	uri, _ := stringField(oauth, "auth_uri", "authUri")
	return uri
}

// State returns the OAuth state correlation token, or empty.
func (c *AuthConfig) State() string {
	oauth, _, ok := c.oauth2()
	if !ok {
		return ""
	}
	state, _ := stringField(oauth, "state")
	return state
}

// AuthResponseURI returns the attached authorization response URI, or empty.
func (c *AuthConfig) AuthResponseURI() string {
	oauth, _, ok := c.oauth2()
	if !ok {
		return ""
	}
	uri, _ := stringField(oauth, "auth_response_uri", "authResponseUri")
	return uri
}

// SetAuthResponseURI attaches the redirect callback URL. This is the single
// field mutation permitted on an otherwise opaque config; the key casing
// mirrors the casing the config arrived with.
func (c *AuthConfig) SetAuthResponseURI(uri string) error {
	oauth, snake, ok := c.oauth2()
	if !ok {
		return fmt.Errorf("auth config has no exchanged oauth2 credential")
	}
	if snake {
		oauth["auth_response_uri"] = uri
	} else {
		oauth["authResponseUri"] = uri
	}
	return nil
}

// CredentialKey identifies the credential being established.
func (c *AuthConfig) CredentialKey() string {
	key, _ := stringField(c.data, "credential_key", "credentialKey")
	return key
}

// AuthScheme returns the scheme descriptor carried by the config, opaque to
// this module.
func (c *AuthConfig) AuthScheme() any {
	scheme, _ := field(c.data, "auth_scheme", "authScheme")
	return scheme
}

// AuthType returns the exchanged credential type (typically "oauth2").
func (c *AuthConfig) AuthType() string {
	exchanged, _, ok := c.exchanged()
	if !ok {
		return ""
	}
	authType, _ := stringField(exchanged, "auth_type", "authType")
	return authType
}
