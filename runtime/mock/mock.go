// Package mock provides a scripted runtime for tests.
package mock

import (
	"context"
	"fmt"
	"io"

	"github.com/viant/agentauth/runtime"
	"github.com/viant/agentauth/schema"
)

// Turn scripts one streamed turn: its events in order, optionally followed
// by a terminal error instead of a normal end of stream.
type Turn struct {
	Events []map[string]any
	Err    error
}

// Runtime replays scripted turns and records what it was asked.
type Runtime struct {
	SessionID string
	CreateErr error
	StreamErr error

	turns       []*Turn
	Requests    []*runtime.StreamRequest
	Streams     []*Stream
	CreateCalls int
}

// Script appends scripted turns.
func (r *Runtime) Script(turns ...*Turn) {
	r.turns = append(r.turns, turns...)
}

func (r *Runtime) CreateSession(ctx context.Context, userID string) (string, error) {
	r.CreateCalls++
	if r.CreateErr != nil {
		return "", r.CreateErr
	}
	return r.SessionID, nil
}

func (r *Runtime) StreamTurn(ctx context.Context, request *runtime.StreamRequest) (runtime.Stream, error) {
	r.Requests = append(r.Requests, request)
	if r.StreamErr != nil {
		return nil, r.StreamErr
	}
	if len(r.turns) == 0 {
		return nil, fmt.Errorf("no scripted turn left")
	}
	turn := r.turns[0]
	r.turns = r.turns[1:]
	aStream := &Stream{turn: turn}
	r.Streams = append(r.Streams, aStream)
	return aStream, nil
}

// New creates a scripted runtime with the given session id.
func New(sessionID string) *Runtime {
	return &Runtime{SessionID: sessionID}
}

// Stream replays one scripted turn and records closure.
type Stream struct {
	turn   *Turn
	index  int
	Closed bool
}

func (s *Stream) Next(ctx context.Context) (*schema.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.index < len(s.turn.Events) {
		event := schema.NewEvent(s.turn.Events[s.index])
		s.index++
		return event, nil
	}
	if s.turn.Err != nil {
		return nil, s.turn.Err
	}
	return nil, io.EOF
}

func (s *Stream) Close() error {
	s.Closed = true
	return nil
}
