package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a completion for a Request. When the request carries a
// Schema, the returned Content is JSON that already validated against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the provider model the requests are sent to.
	ModelID() string
}

// Request is a single generation call.
type Request struct {
	// System sets the model's role, e.g. a strict answer judge.
	System string

	// Messages holds the conversation. Linguiz only sends single-turn
	// requests, so this is usually one user message.
	Messages []Message

	// Schema, when set, asks the provider for structured JSON output.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "answer-judgement".
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a provider's output.
type Response struct {
	// Content is validated JSON when a Schema was requested, raw text
	// otherwise.
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is one of "end" or "max_tokens".
	StopReason string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
