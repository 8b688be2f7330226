package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/interfaces"
)

// Compile-time assertions
var (
	_ interfaces.GenerationClient = (*GeminiService)(nil)
	_ interfaces.GenerationClient = (*ClaudeService)(nil)
)

// NewGenerationClient constructs the generation backend selected by
// llm.default_provider. The Gemini service is shared when Gemini is also
// the generation provider, so one client and one rate limiter serve both
// concerns.
func NewGenerationClient(config *common.Config, gemini *GeminiService, logger arbor.ILogger) (interfaces.GenerationClient, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return NewClaudeService(&config.Claude, logger)
	case common.LLMProviderGemini:
		return gemini, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.LLM.DefaultProvider)
	}
}
