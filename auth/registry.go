package auth

import (
	"context"
	"errors"

	"github.com/viant/agentauth/auth/store"
	"github.com/viant/agentauth/schema"
)

// ErrNotFound reports a correlation miss: the state is unknown, expired, or
// already consumed. It is a normal user-facing outcome ("session expired,
// please retry"), never a fault.
var ErrNotFound = errors.New("pending authorization not found")

// Registry persists suspended turns keyed by OAuth state.
type Registry struct {
	store store.Store
}

// Session identifies the conversation a suspension belongs to. The registry
// references session identity, it never creates it.
type Session struct {
	ID     string
	UserID string
}

// Register persists a pending authorization for a detected credential
// request. Registering the same state twice before consumption is last
// write wins: a single pending turn produces at most one registration, and
// states issued by the provider do not collide across turns.
func (r *Registry) Register(ctx context.Context, request *schema.AuthRequest, session Session) (*PendingAuthorization, error) {
	pending := &PendingAuthorization{
		State:          request.Config.State(),
		FunctionCallID: request.FunctionCallID,
		AuthConfig:     request.Config.Data(),
		SessionID:      session.ID,
		UserID:         session.UserID,
		InvocationID:   request.InvocationID,
	}
	data, err := pending.marshal()
	if err != nil {
		return nil, err
	}
	if err = r.store.Put(ctx, pending.State, data); err != nil {
		return nil, err
	}
	return pending, nil
}

// Consume retrieves and invalidates the pending authorization for state.
// The record is gone after a successful Consume; a second call returns
// ErrNotFound.
func (r *Registry) Consume(ctx context.Context, state string) (*PendingAuthorization, error) {
	data, ok, err := r.store.Get(ctx, state)
	if err != nil || !ok {
		return nil, ErrNotFound
	}
	return unmarshalPending(state, data)
}

// NewRegistry creates a registry over the supplied store.
func NewRegistry(aStore store.Store) *Registry {
	return &Registry{store: aStore}
}
