package schema

// Message is a user-role message submitted to the agent runtime: either
// plain text or a function response resuming a suspended tool call.
type Message struct {
	Role  string `json:"role" yaml:"role"`
	Parts []Part `json:"parts" yaml:"parts"`
}

// Part is one message fragment.
type Part struct {
	Text             string            `json:"text,omitempty" yaml:"text,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty" yaml:"function_response,omitempty"`
}

// FunctionResponse answers a pending function call by id.
type FunctionResponse struct {
	Name     string         `json:"name" yaml:"name"`
	ID       string         `json:"id" yaml:"id"`
	Response map[string]any `json:"response" yaml:"response"`
}

// NewUserText builds a plain text user message.
func NewUserText(text string) *Message {
	return &Message{Role: "user", Parts: []Part{{Text: text}}}
}

// IsFunctionResponse reports whether the message carries a function
// response part.
func (m *Message) IsFunctionResponse() bool {
	for _, part := range m.Parts {
		if part.FunctionResponse != nil {
			return true
		}
	}
	return false
}

// Text returns the concatenated text parts of the message.
func (m *Message) Text() string {
	var result string
	for _, part := range m.Parts {
		result += part.Text
	}
	return result
}
