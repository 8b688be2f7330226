package models

import (
	"errors"
	"fmt"
)

// Stage-local failure sentinels. Handlers and the orchestrator match on
// these with errors.Is; the wrapped cause carries backend detail.
var (
	// ErrEmbeddingFailure indicates the embedding backend could not be
	// reached or returned an invalid shape. Non-recoverable for the turn.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrGenerationFailure indicates the generation backend failed. The
	// turn still receives a fallback answer.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrDimensionMismatch indicates an insertion supplied a vector whose
	// length differs from the store's established dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyQuestion indicates a blank or whitespace-only submission.
	ErrEmptyQuestion = errors.New("question is empty")
)

// EmbeddingError wraps a backend error as an ErrEmbeddingFailure.
func EmbeddingError(cause error) error {
	return fmt.Errorf("%w: %v", ErrEmbeddingFailure, cause)
}

// GenerationError wraps a backend error as an ErrGenerationFailure.
func GenerationError(cause error) error {
	return fmt.Errorf("%w: %v", ErrGenerationFailure, cause)
}

// DimensionError reports the expected and actual vector lengths.
func DimensionError(want, got int) error {
	return fmt.Errorf("%w: store dimension %d, vector dimension %d", ErrDimensionMismatch, want, got)
}
