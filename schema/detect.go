package schema

import "sort"

// CredentialRequestFunction is the reserved function name the agent runtime
// uses to request a user credential mid turn. The same name keys the
// function response that unblocks the waiting call.
const CredentialRequestFunction = "adk_request_credential"

// AuthRequest is a detected credential request extracted from one event.
type AuthRequest struct {
	// FunctionCallID identifies the tool invocation the agent is blocked on.
	FunctionCallID string
	// Config is the opaque authorization config carrying authUri and state.
	Config *AuthConfig
	// InvocationID identifies the paused invocation, when the runtime
	// supports resuming it directly. May be empty.
	InvocationID string
}

// Detect classifies an event as a credential request. It supports both
// transport shapes: the managed engine surfaces requests under
// actions.requested_auth_configs keyed by function-call id, the in-process
// runner as a function call named adk_request_credential. An auth-looking
// structure missing authUri or state is treated as plain content and nil is
// returned rather than an error.
func Detect(event *Event) *AuthRequest {
	if request := detectRequestedConfigs(event); request != nil {
		return request
	}
	return detectFunctionCall(event)
}

func detectRequestedConfigs(event *Event) *AuthRequest {
	actions, ok := objectField(event.Data(), "actions")
	if !ok {
		return nil
	}
	configs, ok := objectField(actions, "requested_auth_configs", "requestedAuthConfigs")
	if !ok || len(configs) == 0 {
		return nil
	}
	// Map order is not defined; scan keys in a stable order.
	keys := make([]string, 0, len(configs))
	for key := range configs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		data, ok := configs[key].(map[string]any)
		if !ok {
			continue
		}
		config := NewAuthConfig(data)
		if config.AuthURI() == "" || config.State() == "" {
			continue
		}
		return &AuthRequest{FunctionCallID: key, Config: config, InvocationID: event.InvocationID()}
	}
	return nil
}

func detectFunctionCall(event *Event) *AuthRequest {
	for _, part := range event.parts() {
		call, ok := objectField(part, "function_call", "functionCall")
		if !ok {
			continue
		}
		if name, _ := stringField(call, "name"); name != CredentialRequestFunction {
			continue
		}
		callID, _ := stringField(call, "id")
		args, ok := objectField(call, "args")
		if !ok || callID == "" {
			continue
		}
		data, ok := objectField(args, "authConfig", "auth_config")
		if !ok {
			continue
		}
		config := NewAuthConfig(data)
		if config.AuthURI() == "" || config.State() == "" {
			continue
		}
		return &AuthRequest{FunctionCallID: callID, Config: config, InvocationID: event.InvocationID()}
	}
	return nil
}
