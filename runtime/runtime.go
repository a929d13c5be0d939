// Package runtime defines the contract this module requires from an agent
// runtime: session creation and a streamed turn interface. The runtime's
// reasoning and tool selection are external; only event iteration, the
// extraction rules in package schema, and graceful stream closure matter
// here.
package runtime

import (
	"context"

	"github.com/viant/agentauth/schema"
)

// Runtime is the streaming interface of a conversational agent runtime.
type Runtime interface {
	// CreateSession establishes a conversation session for userID and
	// returns its identifier.
	CreateSession(ctx context.Context, userID string) (string, error)

	// StreamTurn submits one turn and returns its event stream.
	StreamTurn(ctx context.Context, request *StreamRequest) (Stream, error)
}

// StreamRequest carries one turn submission: a fresh user message or a
// credential response resuming a suspended tool call.
type StreamRequest struct {
	UserID    string
	SessionID string
	Message   *schema.Message
	// InvocationID asks the runtime to resume a specific paused invocation
	// instead of starting a new one, when the runtime supports it.
	InvocationID string
}

// Stream iterates the events of one turn. Next blocks until the next event
// arrives and returns io.EOF once the turn ends. Close releases the
// underlying transport resources and must be called on every exit path,
// including early exits.
type Stream interface {
	Next(ctx context.Context) (*schema.Event, error)
	Close() error
}
