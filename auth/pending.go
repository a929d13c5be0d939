package auth

import (
	"encoding/json"
	"fmt"

	"github.com/viant/agentauth/schema"
)

// PendingAuthorization is one suspended turn awaiting external user
// authorization. It carries everything needed to resume the turn once the
// identity provider redirects back: the function call the agent is blocked
// on, the opaque authorization config, and the session identity.
type PendingAuthorization struct {
	// State is the OAuth correlation token and the storage key. Treated as
	// a capability: whoever presents it claims the suspension.
	State string `json:"-"`

	FunctionCallID string         `json:"functionCallId"`
	AuthConfig     map[string]any `json:"authConfig"`
	SessionID      string         `json:"sessionId"`
	UserID         string         `json:"userId"`
	// InvocationID identifies the paused invocation when the runtime
	// supports resuming it directly; empty otherwise.
	InvocationID string `json:"invocationId,omitempty"`
}

// Config wraps the stored authorization config with casing-tolerant access.
func (p *PendingAuthorization) Config() *schema.AuthConfig {
	return schema.NewAuthConfig(p.AuthConfig)
}

func (p *PendingAuthorization) marshal() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pending authorization: %w", err)
	}
	return data, nil
}

func unmarshalPending(state string, data []byte) (*PendingAuthorization, error) {
	pending := &PendingAuthorization{}
	if err := json.Unmarshal(data, pending); err != nil {
		return nil, fmt.Errorf("failed to decode pending authorization: %w", err)
	}
	pending.State = state
	return pending, nil
}
