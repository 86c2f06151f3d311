package domain

import (
	"context"
	"encoding/json"
)

// Generator is the text generation contract. Implementations talk to an
// LLM provider; callers must validate structured output defensively
// rather than trust the schema contract blindly.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest describes one generation call.
type GenerationRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int

	// SchemaName + JSONSchema, when set, request strict JSON output
	// conforming to the schema.
	SchemaName string
	JSONSchema json.RawMessage
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}
