package turn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/agentauth/auth"
	"github.com/viant/agentauth/auth/store"
	"github.com/viant/agentauth/runtime/mock"
)

var session = auth.Session{ID: "session-1", UserID: "user-1"}

func textEvent(texts ...string) map[string]any {
	var parts []any
	for _, text := range texts {
		parts = append(parts, map[string]any{"text": text})
	}
	return map[string]any{"content": map[string]any{"parts": parts}}
}

func authEvent(callID, authURI, state string) map[string]any {
	return map[string]any{
		"invocation_id": "inv-1",
		"actions": map[string]any{
			"requested_auth_configs": map[string]any{
				callID: map[string]any{
					"auth_scheme": map[string]any{"type_": "oauth2"},
					"exchanged_auth_credential": map[string]any{
						"auth_type": "oauth2",
						"oauth2": map[string]any{
							"auth_uri": authURI,
							"state":    state,
						},
					},
				},
			},
		},
	}
}

func newDriver(t *testing.T, aRuntime *mock.Runtime) (*Driver, *auth.Registry) {
	t.Helper()
	registry := auth.NewRegistry(store.NewMemoryStore())
	return NewDriver(aRuntime, registry, slog.New(slog.DiscardHandler)), registry
}

func TestDriver_Run_Text(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.Script(&mock.Turn{Events: []map[string]any{
		textEvent("Looking that up."),
		textEvent("Here is the answer."),
	}})
	driver, _ := newDriver(t, aRuntime)

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindText, event.Kind)
	assert.Equal(t, "Looking that up.\nHere is the answer.", event.Content)
	assert.True(t, aRuntime.Streams[0].Closed)
}

func TestDriver_Run_NoResponse(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.Script(&mock.Turn{})
	driver, _ := newDriver(t, aRuntime)

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindText, event.Kind)
	assert.Equal(t, NoResponse, event.Content)
}

func TestDriver_Run_Suspends(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.Script(&mock.Turn{Events: []map[string]any{
		authEvent("call-1", "https://issuer.example.com/authorize?state=xyz42", "xyz42"),
		textEvent("never consumed"),
	}})
	driver, registry := newDriver(t, aRuntime)

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindAuthRequired, event.Kind)
	assert.Equal(t, authPrompt, event.Content)
	assert.Equal(t, "https://issuer.example.com/authorize?state=xyz42", event.AuthorizationURL)
	assert.False(t, event.Inferred)
	assert.True(t, aRuntime.Streams[0].Closed)

	pending, err := registry.Consume(t.Context(), "xyz42")
	require.NoError(t, err)
	assert.Equal(t, "call-1", pending.FunctionCallID)
	assert.Equal(t, session.ID, pending.SessionID)
	assert.Equal(t, session.UserID, pending.UserID)
	assert.Equal(t, "inv-1", pending.InvocationID)
}

func TestDriver_Run_TextBeforeSuspension(t *testing.T) {
	aRuntime := mock.New(session.ID)
	event := authEvent("call-1", "https://issuer.example.com/authorize", "xyz42")
	event["content"] = map[string]any{"parts": []any{map[string]any{"text": "I need access to your calendar."}}}
	aRuntime.Script(&mock.Turn{Events: []map[string]any{event}})
	driver, _ := newDriver(t, aRuntime)

	outcome := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindAuthRequired, outcome.Kind)
	assert.Equal(t, "I need access to your calendar.", outcome.Content)
}

type failingStore struct{}

func (f *failingStore) Put(ctx context.Context, key string, data []byte) error {
	return fmt.Errorf("disk full")
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func TestDriver_Run_RegisterFailure(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.Script(&mock.Turn{Events: []map[string]any{
		authEvent("call-1", "https://issuer.example.com/authorize", "xyz42"),
	}})
	registry := auth.NewRegistry(&failingStore{})
	driver := NewDriver(aRuntime, registry, slog.New(slog.DiscardHandler))

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindError, event.Kind)
	assert.Contains(t, event.Content, "disk full")
	assert.True(t, aRuntime.Streams[0].Closed)
}

func TestDriver_Run_InferredAuthError(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.Script(&mock.Turn{
		Events: []map[string]any{textEvent("partial")},
		Err:    fmt.Errorf("upstream rejected the call: OAuth token expired"),
	})
	driver, _ := newDriver(t, aRuntime)

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindAuthRequired, event.Kind)
	assert.True(t, event.Inferred)
	assert.Empty(t, event.AuthorizationURL)
	assert.Contains(t, event.Content, "OAuth token expired")
	assert.True(t, aRuntime.Streams[0].Closed)
}

func TestDriver_Run_StreamError(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.Script(&mock.Turn{Err: fmt.Errorf("connection reset")})
	driver, _ := newDriver(t, aRuntime)

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindError, event.Kind)
	assert.Equal(t, "connection reset", event.Content)
	assert.True(t, aRuntime.Streams[0].Closed)
}

// The mock runtime is not safe for concurrent use; the per-session mutex is
// what makes this pass under the race detector.
func TestDriver_Run_SerializesSession(t *testing.T) {
	aRuntime := mock.New(session.ID)
	const turns = 4
	for i := 0; i < turns; i++ {
		aRuntime.Script(&mock.Turn{Events: []map[string]any{textEvent("ok")}})
	}
	driver, _ := newDriver(t, aRuntime)

	var group sync.WaitGroup
	for i := 0; i < turns; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			event := driver.Run(t.Context(), session, nil, "")
			assert.Equal(t, KindText, event.Kind)
		}()
	}
	group.Wait()
	assert.Len(t, aRuntime.Requests, turns)
}

func TestDriver_Run_StreamTurnFailure(t *testing.T) {
	aRuntime := mock.New(session.ID)
	aRuntime.StreamErr = fmt.Errorf("connect: connection refused")
	driver, _ := newDriver(t, aRuntime)

	event := driver.Run(t.Context(), session, nil, "")
	assert.Equal(t, KindError, event.Kind)
}
