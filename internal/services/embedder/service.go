package embedder

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/models"
)

// Backend is the raw embedding surface the wrapped provider exposes.
// The Gemini service implements it.
type Backend interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	CountTokens(ctx context.Context, text string) (int, error)
	EmbedModelName() string
	EmbedDimension() int
}

// Service implements interfaces.EmbeddingClient. It normalizes input,
// pairs the vector with its token count, and validates the backend's
// response shape so a partial or zero vector never reaches the pipeline.
type Service struct {
	backend Backend
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.EmbeddingClient = (*Service)(nil)

// NewService creates a new embedding service
func NewService(backend Backend, logger arbor.ILogger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// Embed converts text to a vector and its generation-model token count.
// Internal newlines are collapsed to spaces first; the backend's
// embedding quality degrades on raw newlines.
func (s *Service) Embed(ctx context.Context, text string) (*interfaces.EmbeddingResult, error) {
	normalized := collapseNewlines(text)
	if normalized == "" {
		return nil, models.EmbeddingError(models.ErrEmptyQuestion)
	}

	start := time.Now()
	vector, err := s.backend.EmbedText(ctx, normalized)
	if err != nil {
		s.logger.Error().Err(err).Msg("Embedding backend failed")
		return nil, models.EmbeddingError(err)
	}
	if len(vector) != s.backend.EmbedDimension() {
		s.logger.Error().
			Int("expected", s.backend.EmbedDimension()).
			Int("got", len(vector)).
			Msg("Embedding backend returned unexpected vector shape")
		return nil, models.EmbeddingError(models.DimensionError(s.backend.EmbedDimension(), len(vector)))
	}

	tokenCount, err := s.backend.CountTokens(ctx, normalized)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token counting failed")
		return nil, models.EmbeddingError(err)
	}

	s.logger.Debug().
		Int("text_length", len(normalized)).
		Int("embedding_dim", len(vector)).
		Int("token_count", tokenCount).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return &interfaces.EmbeddingResult{
		Vector:     vector,
		TokenCount: tokenCount,
	}, nil
}

// Dimension returns the fixed embedding dimensionality.
func (s *Service) Dimension() int {
	return s.backend.EmbedDimension()
}

// ModelName returns the backend embedding model identifier.
func (s *Service) ModelName() string {
	return s.backend.EmbedModelName()
}

// collapseNewlines replaces runs of whitespace containing newlines with
// single spaces and trims the result.
func collapseNewlines(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
