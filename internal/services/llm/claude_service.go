package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/models"
)

// ClaudeService generates answer text through the Anthropic Claude API.
type ClaudeService struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClaudeService creates a Claude generation client.
func NewClaudeService(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout %q: %w", config.Timeout, err)
	}

	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid claude rate limit %q: %w", config.RateLimit, err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	logger.Info().
		Str("model", config.Model).
		Int("max_tokens", config.MaxTokens).
		Dur("timeout", timeout).
		Msg("Claude service initialized")

	return &ClaudeService{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// Generate produces answer text for a fully rendered prompt. No retries:
// a backend failure ends the turn.
func (s *ClaudeService) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", models.GenerationError(fmt.Errorf("prompt cannot be empty"))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", models.GenerationError(err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Claude generation failed")
		return "", models.GenerationError(err)
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.Text)
		}
	}
	if answer.Len() == 0 {
		return "", models.GenerationError(fmt.Errorf("empty response from Claude API"))
	}

	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", answer.Len()).
		Dur("duration", time.Since(start)).
		Msg("Claude generation complete")

	return answer.String(), nil
}

// ModelName returns the generation model identifier.
func (s *ClaudeService) ModelName() string {
	return s.config.Model
}

// Close resets the client to its zero value.
func (s *ClaudeService) Close() error {
	s.client = anthropic.Client{}
	return nil
}
