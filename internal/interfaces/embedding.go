package interfaces

import (
	"context"
)

// EmbeddingResult is the validated boundary shape returned by the
// embedding backend: a vector and the generation-model token count for
// the same text, produced by one backend so similarity comparison and
// budget accounting stay consistent.
type EmbeddingResult struct {
	Vector     []float32 `json:"vector"`
	TokenCount int       `json:"token_count"`
}

// EmbeddingClient converts text to a vector representation and reports
// its token cost. One fixed model/dimensionality per deployment.
type EmbeddingClient interface {
	// Embed returns the vector and token count for text. Internal
	// newlines are collapsed to spaces before submission. Any backend
	// error surfaces as models.ErrEmbeddingFailure; callers must not
	// proceed with a partial or empty vector.
	Embed(ctx context.Context, text string) (*EmbeddingResult, error)

	// Dimension returns the fixed embedding dimensionality.
	Dimension() int

	// ModelName returns the backend embedding model identifier.
	ModelName() string
}
