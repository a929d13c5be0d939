// Package engine integrates a managed agent-engine deployment over its REST
// streaming surface. Sessions are created with a :query call, turns stream
// as newline-delimited JSON events from :streamQuery. Events arrive in the
// managed shape: snake_case objects with credential requests under
// actions.requested_auth_configs.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/viant/agentauth/runtime"
	"golang.org/x/oauth2"
)

// Config identifies the deployed agent and how to authenticate to it.
type Config struct {
	// Resource is the fully qualified resource endpoint of the deployed
	// agent, e.g. https://{region}-aiplatform.googleapis.com/v1/projects/{project}/locations/{region}/reasoningEngines/{id}
	Resource string `yaml:"resource" json:"resource" short:"r" long:"resource" description:"deployed agent resource endpoint"`
	// AccessToken optionally authenticates with a static bearer token
	// instead of an injected token source.
	AccessToken string `yaml:"accessToken,omitempty" json:"accessToken,omitempty" long:"access-token" description:"static access token"`
}

// Service is a runtime.Runtime over the managed engine REST API.
type Service struct {
	config *Config
	client *http.Client
}

// Option customizes the engine client.
type Option func(s *Service)

// WithHTTPClient injects the HTTP client, typically carrying an OAuth2
// transport.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithTokenSource authenticates requests with the supplied token source.
func WithTokenSource(source oauth2.TokenSource) Option {
	return func(s *Service) {
		s.client = oauth2.NewClient(context.Background(), source)
	}
}

// CreateSession creates a runtime session for userID.
func (s *Service) CreateSession(ctx context.Context, userID string) (string, error) {
	response, err := s.call(ctx, ":query", map[string]any{
		"class_method": "async_create_session",
		"input":        map[string]any{"user_id": userID},
	})
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	output := struct {
		Output struct {
			ID string `json:"id"`
		} `json:"output"`
	}{}
	if err = json.NewDecoder(response.Body).Decode(&output); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if output.Output.ID == "" {
		return "", fmt.Errorf("runtime returned no session id")
	}
	return output.Output.ID, nil
}

// StreamTurn submits one turn and returns the live event stream. The
// returned stream owns the response body; the caller must Close it on every
// exit path.
func (s *Service) StreamTurn(ctx context.Context, request *runtime.StreamRequest) (runtime.Stream, error) {
	input := map[string]any{
		"user_id":    request.UserID,
		"session_id": request.SessionID,
		"message":    encodeMessage(request),
	}
	if request.InvocationID != "" {
		input["invocation_id"] = request.InvocationID
	}
	response, err := s.call(ctx, ":streamQuery?alt=sse", map[string]any{
		"class_method": "async_stream_query",
		"input":        input,
	})
	if err != nil {
		return nil, err
	}
	return newStream(response.Body), nil
}

// encodeMessage sends plain text turns as a bare string, the way the
// runtime expects fresh user messages; structured messages (credential
// responses) pass through as objects.
func encodeMessage(request *runtime.StreamRequest) any {
	if request.Message.IsFunctionResponse() {
		return request.Message
	}
	return request.Message.Text()
}

func (s *Service) call(ctx context.Context, method string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Resource+method, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if s.config.AccessToken != "" {
		request.Header.Set("Authorization", "Bearer "+s.config.AccessToken)
	}
	response, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("runtime request failed: %w", err)
	}
	if response.StatusCode >= http.StatusBadRequest {
		defer response.Body.Close()
		detail := struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}{}
		_ = json.NewDecoder(response.Body).Decode(&detail)
		if detail.Error.Message == "" {
			detail.Error.Message = response.Status
		}
		return nil, fmt.Errorf("runtime request failed: %v", detail.Error.Message)
	}
	return response, nil
}

// New creates a managed engine client.
func New(config *Config, options ...Option) *Service {
	service := &Service{config: config, client: http.DefaultClient}
	for _, option := range options {
		option(service)
	}
	return service
}
