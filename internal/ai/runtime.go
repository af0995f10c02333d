package ai

import (
	"context"
	"strings"
)

// Runtime is the chat backend the assistant forwards questions to.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderLocal      = "local"
)

// StreamRuntime is an optional extension that supports streaming output.
// Implementors should invoke onDelta with each partial content chunk.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// NormalizeProvider maps user spellings onto a registered provider name.
// Vendor names routed through OpenRouter collapse to openrouter; "" stays "".
func NormalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case ProviderLocal, ProviderOllama:
		return ProviderOllama
	case "openai", "anthropic", "google", "gemini", "meta", "llama":
		return ProviderOpenRouter
	default:
		return p
	}
}
