package interfaces

import (
	"context"
)

// GenerationClient obtains generated answer text for a fully rendered
// prompt. Calls are stateless; each prompt re-includes whatever context
// it needs. No automatic retries - a failure ends the turn.
type GenerationClient interface {
	// Generate returns the backend's answer for prompt. Backend errors
	// (including timeouts) surface as models.ErrGenerationFailure.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the backend generation model identifier.
	ModelName() string

	// Close releases any underlying client resources.
	Close() error
}
