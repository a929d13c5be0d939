// Package runner integrates a locally hosted agent process over a JSON-RPC
// stdio transport: the direct counterpart of the managed engine. Events
// arrive in the runner shape: camelCase objects surfacing credential
// requests as adk_request_credential function calls.
package runner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/agentauth/runtime"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/client/stdio"
	"github.com/viant/mcp-protocol/syncmap"
)

const (
	methodSessionCreate = "session/create"
	methodTurnStream    = "turn/stream"
	notificationEvent   = "turn/event"
)

// Service is a runtime.Runtime speaking to an agent subprocess.
type Service struct {
	transport transport.Transport
	handler   *handler
}

// CreateSession asks the runner process for a new session.
func (s *Service) CreateSession(ctx context.Context, userID string) (string, error) {
	request, err := jsonrpc.NewRequest(methodSessionCreate, map[string]any{"userId": userID})
	if err != nil {
		return "", err
	}
	response, err := s.transport.Send(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to create runner session: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("failed to create runner session: %v", response.Error.Message)
	}
	result := struct {
		ID string `json:"id"`
	}{}
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return "", fmt.Errorf("failed to decode session result: %w", err)
	}
	return result.ID, nil
}

// StreamTurn submits a turn; events fan in as turn/event notifications
// correlated by a per-turn identifier.
func (s *Service) StreamTurn(ctx context.Context, request *runtime.StreamRequest) (runtime.Stream, error) {
	turnID := uuid.New().String()
	events := make(chan *turnEvent, 256)
	s.handler.turns.Put(turnID, events)

	params := map[string]any{
		"turnId":    turnID,
		"userId":    request.UserID,
		"sessionId": request.SessionID,
		"message":   request.Message,
	}
	if request.InvocationID != "" {
		params["invocationId"] = request.InvocationID
	}
	rpcRequest, err := jsonrpc.NewRequest(methodTurnStream, params)
	if err != nil {
		s.handler.turns.Delete(turnID)
		return nil, err
	}
	response, err := s.transport.Send(ctx, rpcRequest)
	if err != nil {
		s.handler.turns.Delete(turnID)
		return nil, fmt.Errorf("failed to submit turn: %w", err)
	}
	if response.Error != nil {
		s.handler.turns.Delete(turnID)
		return nil, fmt.Errorf("failed to submit turn: %v", response.Error.Message)
	}
	return &stream{handler: s.handler, turnID: turnID, events: events}, nil
}

// Options customizes the runner subprocess invocation.
type Options struct {
	Command   string   `yaml:"command" json:"command" short:"C" long:"command" description:"runner command"`
	Arguments []string `yaml:"arguments,omitempty" json:"arguments,omitempty" short:"A" long:"arguments" description:"runner command arguments"`
}

// New launches the runner subprocess and wires the stdio transport.
func New(options *Options) (*Service, error) {
	if options.Command == "" {
		return nil, fmt.Errorf("command is required for the runner integration")
	}
	aHandler := newHandler()
	aTransport, err := stdio.New(options.Command,
		stdio.WithHandler(aHandler),
		stdio.WithArguments(options.Arguments...))
	if err != nil {
		return nil, fmt.Errorf("failed to create runner transport: %w", err)
	}
	return &Service{transport: aTransport, handler: aHandler}, nil
}

// turnEvent is one fan-in item: an event, a terminal error, or the done
// marker.
type turnEvent struct {
	event map[string]any
	err   string
	done  bool
}

type handler struct {
	turns *syncmap.Map[string, chan *turnEvent]
}

// Serve rejects server-to-client requests; the runner protocol only uses
// notifications in that direction.
func (h *handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
}

func (h *handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	if notification.Method != notificationEvent {
		return
	}
	payload := struct {
		TurnID string         `json:"turnId"`
		Event  map[string]any `json:"event,omitempty"`
		Error  string         `json:"error,omitempty"`
		Done   bool           `json:"done,omitempty"`
	}{}
	if err := json.Unmarshal(notification.Params, &payload); err != nil {
		return
	}
	events, ok := h.turns.Get(payload.TurnID)
	if !ok {
		// turn already closed; drop late events
		return
	}
	select {
	case events <- &turnEvent{event: payload.Event, err: payload.Error, done: payload.Done}:
	default:
		// the consumer abandoned the turn without draining; never block the
		// transport reader on it
	}
}

func newHandler() *handler {
	return &handler{turns: syncmap.NewMap[string, chan *turnEvent]()}
}
