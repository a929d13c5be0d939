package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/viant/agentauth/schema"
)

// stream adapts the per-turn notification fan-in to runtime.Stream.
type stream struct {
	handler *handler
	turnID  string
	events  chan *turnEvent
}

func (s *stream) Next(ctx context.Context) (*schema.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case item := <-s.events:
		if item.err != "" {
			return nil, fmt.Errorf("%v", item.err)
		}
		if item.done {
			return nil, io.EOF
		}
		return schema.NewEvent(item.event), nil
	}
}

func (s *stream) Close() error {
	s.handler.turns.Delete(s.turnID)
	return nil
}
