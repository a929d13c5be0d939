package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/agentauth/runtime"
	"github.com/viant/agentauth/schema"
)

func TestService_CreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/agent:query", request.URL.Path)
		require.Equal(t, "Bearer t-1", request.Header.Get("Authorization"))
		payload := map[string]any{}
		require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		assert.Equal(t, "async_create_session", payload["class_method"])
		_ = json.NewEncoder(writer).Encode(map[string]any{"output": map[string]any{"id": "sess-9"}})
	}))
	defer server.Close()

	service := New(&Config{Resource: server.URL + "/agent", AccessToken: "t-1"})
	sessionID, err := service.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-9", sessionID)
}

func TestService_StreamTurn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/agent:streamQuery", request.URL.Path)
		payload := struct {
			ClassMethod string `json:"class_method"`
			Input       struct {
				UserID    string `json:"user_id"`
				SessionID string `json:"session_id"`
				Message   any    `json:"message"`
			} `json:"input"`
		}{}
		require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		assert.Equal(t, "async_stream_query", payload.ClassMethod)
		// a fresh user turn goes over the wire as a bare string
		assert.Equal(t, "Are there launches today?", payload.Input.Message)

		_, _ = writer.Write([]byte(`{"content":{"parts":[{"text":"Checking..."}]}}` + "\n"))
		_, _ = writer.Write([]byte("\n"))
		_, _ = writer.Write([]byte(`{"content":{"parts":[{"text":"3 launches today."}]}}` + "\n"))
	}))
	defer server.Close()

	service := New(&Config{Resource: server.URL + "/agent"})
	stream, err := service.StreamTurn(context.Background(), &runtime.StreamRequest{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   schema.NewUserText("Are there launches today?"),
	})
	require.NoError(t, err)
	defer stream.Close()

	event, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Checking..."}, event.Texts())

	event, err = stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3 launches today."}, event.Texts())

	_, err = stream.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestService_StreamTurn_FunctionResponseStaysStructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		payload := struct {
			Input struct {
				Message map[string]any `json:"message"`
			} `json:"input"`
		}{}
		require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		parts := payload.Input.Message["parts"].([]any)
		part := parts[0].(map[string]any)
		response := part["function_response"].(map[string]any)
		assert.Equal(t, schema.CredentialRequestFunction, response["name"])
		assert.Equal(t, "call-1", response["id"])
	}))
	defer server.Close()

	message := &schema.Message{Role: "user", Parts: []schema.Part{{
		FunctionResponse: &schema.FunctionResponse{
			Name:     schema.CredentialRequestFunction,
			ID:       "call-1",
			Response: map[string]any{"credential_key": "k"},
		},
	}}}
	service := New(&Config{Resource: server.URL + "/agent"})
	stream, err := service.StreamTurn(context.Background(), &runtime.StreamRequest{
		UserID: "user-1", SessionID: "sess-1", Message: message,
	})
	require.NoError(t, err)
	_ = stream.Close()
}

func TestService_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(writer).Encode(map[string]any{"error": map[string]any{"message": "OAuth authorization required"}})
	}))
	defer server.Close()

	service := New(&Config{Resource: server.URL + "/agent"})
	_, err := service.CreateSession(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuth authorization required")
}
