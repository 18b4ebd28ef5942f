package ports

import "context"

// ModelConfig - per-call knobs for the LLM backend.
type ModelConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// LLMPort - interface over the extraction backend. One implementation per
// provider; the container selects one at construction time and the pipeline
// holds it as a plain reference.
type LLMPort interface {
	// Complete sends a prompt and returns the raw text response.
	// This is the pipeline's principal suspension point.
	Complete(ctx context.Context, prompt string, cfg ModelConfig) (string, error)
}
