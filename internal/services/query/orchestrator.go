package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/models"
	"github.com/oneiro-app/oneiro/internal/services/contextbuilder"
	"github.com/oneiro-app/oneiro/internal/services/prompt"
)

// User-visible fallback notices. A failed turn always carries one so the
// history never shows a question without a paired answer.
const (
	embeddingFallback  = "Sorry - something went wrong while reading your dream. Please try sending it again."
	searchFallback     = "Sorry - the reference library is unavailable right now. Please try again."
	generationFallback = "Sorry - I couldn't put an interpretation together this time. Please try again."
)

// Orchestrator sequences the query pipeline per user turn and owns the
// append-only conversation history. Every dependency is injected; tests
// substitute fakes through the interfaces package.
type Orchestrator struct {
	embedder  interfaces.EmbeddingClient
	storage   interfaces.DocumentStorage
	generator interfaces.GenerationClient
	template  *prompt.Template
	extractor interfaces.PDFExtractor
	notifier  interfaces.TurnNotifier // optional
	logger    arbor.ILogger

	threshold   float64
	limit       int
	tokenBudget int

	mu      sync.Mutex
	history []*models.ConversationTurn
}

// Compile-time assertion
var _ interfaces.QueryService = (*Orchestrator)(nil)

// NewOrchestrator creates a query orchestrator.
func NewOrchestrator(
	embedder interfaces.EmbeddingClient,
	storage interfaces.DocumentStorage,
	generator interfaces.GenerationClient,
	template *prompt.Template,
	extractor interfaces.PDFExtractor,
	notifier interfaces.TurnNotifier,
	retrieval *common.RetrievalConfig,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		embedder:    embedder,
		storage:     storage,
		generator:   generator,
		template:    template,
		extractor:   extractor,
		notifier:    notifier,
		logger:      logger,
		threshold:   retrieval.Threshold,
		limit:       retrieval.Limit,
		tokenBudget: retrieval.TokenBudget,
	}
}

// Ask runs one turn through embed -> search -> assemble -> render ->
// generate. Stages execute strictly in sequence; stage-local failures
// are absorbed here and converted into fallback answers, so the
// returned turn is always terminal. Only a blank question is an error.
func (o *Orchestrator) Ask(ctx context.Context, question string) (*models.ConversationTurn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, models.ErrEmptyQuestion
	}

	turn := &models.ConversationTurn{
		ID:        common.NewTurnID(),
		Question:  question,
		Stage:     models.StageIdle,
		StartedAt: time.Now(),
	}

	// The question entry is visible (pending) before any backend work.
	o.mu.Lock()
	o.history = append(o.history, turn)
	o.mu.Unlock()

	o.logger.Info().
		Str("turn_id", turn.ID).
		Int("question_length", len(question)).
		Msg("Query turn started")

	o.setStage(turn, models.StageEmbedding)
	embedding, err := o.embedder.Embed(ctx, question)
	if err != nil {
		o.logger.Warn().Err(err).Str("turn_id", turn.ID).Msg("Embedding stage failed")
		o.fail(turn, models.StageEmbedding, embeddingFallback)
		return o.snapshot(turn), nil
	}

	o.setStage(turn, models.StageSearching)
	matches, err := o.storage.Search(ctx, embedding.Vector, o.threshold, o.limit)
	if err != nil {
		o.logger.Warn().Err(err).Str("turn_id", turn.ID).Msg("Search stage failed")
		o.fail(turn, models.StageSearching, searchFallback)
		return o.snapshot(turn), nil
	}

	// An empty match list is valid input to assembly, not a failure.
	o.setStage(turn, models.StageAssembling)
	assembled := contextbuilder.Assemble(matches, o.tokenBudget)

	o.setStage(turn, models.StageGenerating)
	rendered := o.template.Render(assembled.Text, question)
	answer, err := o.generator.Generate(ctx, rendered)
	if err != nil {
		o.logger.Warn().Err(err).Str("turn_id", turn.ID).Msg("Generation stage failed")
		o.fail(turn, models.StageGenerating, generationFallback)
		return o.snapshot(turn), nil
	}

	o.mu.Lock()
	turn.Answer = &answer
	turn.ContextUsed = assembled.UsedTokens > 0
	turn.UsedTokens = assembled.UsedTokens
	turn.Stage = models.StageDone
	turn.FinishedAt = time.Now()
	o.mu.Unlock()
	o.notify(turn.ID, models.StageDone)

	o.logger.Info().
		Str("turn_id", turn.ID).
		Int("matches", len(matches)).
		Int("used_tokens", assembled.UsedTokens).
		Int("answer_length", len(answer)).
		Msg("Query turn complete")

	return o.snapshot(turn), nil
}

// History returns a read-only snapshot of the turn log in submission order.
func (o *Orchestrator) History() []models.ConversationTurn {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.ConversationTurn, len(o.history))
	for i, t := range o.history {
		out[i] = *t
	}
	return out
}

// IngestText embeds reference text and inserts it into the store.
// Failures here are rejected operations, surfaced to the caller.
func (o *Orchestrator) IngestText(ctx context.Context, text string) (*models.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document text is empty")
	}

	result, err := o.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	doc, err := o.storage.Insert(ctx, text, result.Vector, result.TokenCount)
	if err != nil {
		return nil, err
	}

	o.logger.Info().
		Str("doc_id", doc.ID).
		Int("token_count", doc.TokenCount).
		Msg("Document ingested")

	return doc, nil
}

// IngestPDF extracts text from an uploaded PDF and ingests it like
// typed text.
func (o *Orchestrator) IngestPDF(ctx context.Context, pdf []byte) (*models.Document, error) {
	text, err := o.extractor.ExtractText(ctx, pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return o.IngestText(ctx, text)
}

func (o *Orchestrator) setStage(turn *models.ConversationTurn, stage models.TurnStage) {
	o.mu.Lock()
	turn.Stage = stage
	o.mu.Unlock()
	o.notify(turn.ID, stage)
}

// fail moves a turn to the absorbing error state with a fallback answer.
func (o *Orchestrator) fail(turn *models.ConversationTurn, failedStage models.TurnStage, fallback string) {
	o.mu.Lock()
	turn.Answer = &fallback
	turn.Stage = models.StageError
	turn.FailedStage = failedStage
	turn.FinishedAt = time.Now()
	o.mu.Unlock()
	o.notify(turn.ID, models.StageError)
}

func (o *Orchestrator) snapshot(turn *models.ConversationTurn) *models.ConversationTurn {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := *turn
	return &snap
}

func (o *Orchestrator) notify(turnID string, stage models.TurnStage) {
	if o.notifier == nil {
		return
	}
	o.notifier.NotifyTurn(interfaces.TurnEvent{TurnID: turnID, Stage: stage})
}
