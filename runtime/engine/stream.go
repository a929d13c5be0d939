package engine

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/viant/agentauth/schema"
)

// maxEventSize bounds a single streamed event line.
const maxEventSize = 4 * 1024 * 1024

// stream reads newline-delimited JSON events off the response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (s *stream) Next(ctx context.Context) (*schema.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		// SSE-style framing may prefix payload lines; tolerate both
		line = strings.TrimPrefix(line, "data:")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		event, err := schema.ParseEvent([]byte(line))
		if err != nil {
			return nil, err
		}
		return event, nil
	}
}

func (s *stream) Close() error {
	return s.body.Close()
}

func newStream(body io.ReadCloser) *stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)
	return &stream{body: body, scanner: scanner}
}
