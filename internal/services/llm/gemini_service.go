package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/models"
)

// GeminiService provides embeddings, token counting and text generation
// through the Google Gemini API. It is the fixed embedding backend for a
// deployment and, depending on configuration, the generation backend too.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGeminiService creates a Gemini service instance.
func NewGeminiService(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout %q: %w", config.Timeout, err)
	}

	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini rate limit %q: %w", config.RateLimit, err)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("embed_model", config.EmbedModel).
		Str("chat_model", config.Model).
		Int("embed_dimension", config.EmbedDimension).
		Dur("timeout", timeout).
		Msg("Gemini service initialized")

	return &GeminiService{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// EmbedText generates an embedding vector with the configured output
// dimensionality.
func (s *GeminiService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embeddingConfig)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != s.config.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.config.EmbedDimension, len(embedding))
	}

	return embedding, nil
}

// CountTokens reports the generation-model token count for text, so the
// context assembler budgets in the same units the generator consumes.
func (s *GeminiService) CountTokens(ctx context.Context, text string) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Models.CountTokens(timeoutCtx, s.config.Model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, fmt.Errorf("token counting failed: %w", err)
	}
	if resp == nil {
		return 0, fmt.Errorf("no token count returned from API")
	}

	return int(resp.TotalTokens), nil
}

// Generate produces answer text for a fully rendered prompt. No retries:
// a backend failure ends the turn.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", models.GenerationError(fmt.Errorf("prompt cannot be empty"))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", models.GenerationError(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		s.logger.Error().Err(err).Msg("Gemini generation failed")
		return "", models.GenerationError(err)
	}

	var answer strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					answer.WriteString(part.Text)
				}
			}
			if answer.Len() > 0 {
				break
			}
		}
	}
	if answer.Len() == 0 {
		return "", models.GenerationError(fmt.Errorf("empty response from Gemini API"))
	}

	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", answer.Len()).
		Dur("duration", time.Since(start)).
		Msg("Gemini generation complete")

	return answer.String(), nil
}

// ModelName returns the generation model identifier.
func (s *GeminiService) ModelName() string {
	return s.config.Model
}

// EmbedModelName returns the embedding model identifier.
func (s *GeminiService) EmbedModelName() string {
	return s.config.EmbedModel
}

// EmbedDimension returns the configured output dimensionality.
func (s *GeminiService) EmbedDimension() int {
	return s.config.EmbedDimension
}

// Close releases the client reference. genai.Client does not require an
// explicit close.
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}
