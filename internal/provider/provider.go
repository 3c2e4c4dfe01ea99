// Package provider defines the unified interface and shared types for all
// text-generation providers. Each adapter (openai.go, anthropic.go) converts
// the unified request into its vendor's API format and returns one complete
// response per call.
package provider

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the unified request sent to a provider. The full message
// history is included so follow-up turns stay coherent.
type Request struct {
	Model    string
	Messages []Message
}

// Provider is the unified interface over hosted text-generation services.
type Provider interface {
	// Generate sends the request and blocks until the complete assistant
	// reply is available. An empty or malformed response is an error.
	Generate(ctx context.Context, req *Request) (string, error)

	// Name returns the provider identifier, e.g. "gemini", "openai", "anthropic".
	Name() string

	// DefaultModel returns the model used when the request does not name one.
	DefaultModel() string
}
