package schema

import (
	"encoding/json"
	"fmt"
)

// Event is one streamed agent event. The raw object is kept as decoded JSON;
// accessors normalize snake_case and camelCase field names so callers never
// branch on the transport shape.
type Event struct {
	data map[string]any
}

// NewEvent wraps an already decoded event object.
func NewEvent(data map[string]any) *Event {
	if data == nil {
		data = map[string]any{}
	}
	return &Event{data: data}
}

// ParseEvent decodes a single JSON event.
func ParseEvent(raw []byte) (*Event, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return &Event{data: data}, nil
}

// Data exposes the underlying object.
func (e *Event) Data() map[string]any {
	return e.data
}

// InvocationID returns the runtime invocation identifier when present.
func (e *Event) InvocationID() string {
	id, _ := stringField(e.data, "invocation_id", "invocationId")
	return id
}

// Texts returns all text fragments carried by the event, in order. Text
// extraction is independent of credential-request detection: an event may
// carry both.
func (e *Event) Texts() []string {
	var result []string
	for _, part := range e.parts() {
		if text, ok := stringField(part, "text"); ok && text != "" {
			result = append(result, text)
		}
	}
	if len(result) > 0 {
		return result
	}
	if text, ok := stringField(e.data, "text"); ok && text != "" {
		result = append(result, text)
	}
	return result
}

// parts returns the event part list, looking under content first (managed
// engine shape) and then at the top level (runner shape).
func (e *Event) parts() []map[string]any {
	source := e.data
	if content, ok := objectField(e.data, "content"); ok {
		source = content
	}
	value, ok := field(source, "parts")
	if !ok {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	var result []map[string]any
	for _, item := range items {
		if part, ok := item.(map[string]any); ok {
			result = append(result, part)
		}
	}
	return result
}

// field returns the first present value among the candidate key names.
func field(m map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if value, ok := m[name]; ok {
			return value, true
		}
	}
	return nil, false
}

func objectField(m map[string]any, names ...string) (map[string]any, bool) {
	value, ok := field(m, names...)
	if !ok {
		return nil, false
	}
	object, ok := value.(map[string]any)
	return object, ok
}

func stringField(m map[string]any, names ...string) (string, bool) {
	value, ok := field(m, names...)
	if !ok {
		return "", false
	}
	text, ok := value.(string)
	return text, ok
}
