// Package llm provides summarization providers and local-first provider
// selection. A local Ollama instance is preferred when reachable; a
// configured OpenAI key serves as the remote fallback.
package llm

import "context"

// Provider generates a text completion for a summarization prompt.
type Provider interface {
	// Summarize sends the prompt and returns the trimmed completion text.
	Summarize(ctx context.Context, prompt string) (string, error)
	// Name returns the provider identifier ("ollama" or "openai").
	Name() string
}

// LocalProvider is a Provider whose availability can be probed cheaply
// before committing a request to it.
type LocalProvider interface {
	Provider
	// Available reports whether the provider is reachable and serves the
	// configured model. It must return quickly and never panic.
	Available(ctx context.Context) bool
}
