package query

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/models"
	"github.com/oneiro-app/oneiro/internal/services/prompt"
	"github.com/oneiro-app/oneiro/internal/storage/badger"
)

// fakeEmbedder returns a fixed vector so every stored document matches
// every question with similarity 1.
type fakeEmbedder struct {
	err        error
	vector     []float32
	tokenCount int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (*interfaces.EmbeddingResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &interfaces.EmbeddingResult{Vector: f.vector, TokenCount: f.tokenCount}, nil
}

func (f *fakeEmbedder) Dimension() int    { return len(f.vector) }
func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

// fakeGenerator records the rendered prompt and returns a canned answer.
type fakeGenerator struct {
	mu      sync.Mutex
	err     error
	answer  string
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) ModelName() string { return "fake-gen" }
func (f *fakeGenerator) Close() error      { return nil }

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	return f.text, f.err
}

// recordingNotifier captures stage events in order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []interfaces.TurnEvent
}

func (n *recordingNotifier) NotifyTurn(event interfaces.TurnEvent) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *recordingNotifier) stages() []models.TurnStage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.TurnStage, len(n.events))
	for i, e := range n.events {
		out[i] = e.Stage
	}
	return out
}

type testDeps struct {
	embedder  *fakeEmbedder
	generator *fakeGenerator
	extractor *fakeExtractor
	notifier  *recordingNotifier
	storage   interfaces.DocumentStorage
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *testDeps) {
	t.Helper()

	logger := arbor.NewLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storage, err := badger.NewDocumentStorage(db, logger)
	require.NoError(t, err)

	deps := &testDeps{
		embedder:  &fakeEmbedder{vector: []float32{1, 0, 0}, tokenCount: 10},
		generator: &fakeGenerator{answer: "The capital of France is Paris."},
		extractor: &fakeExtractor{},
		notifier:  &recordingNotifier{},
		storage:   storage,
	}

	orch := NewOrchestrator(
		deps.embedder,
		deps.storage,
		deps.generator,
		prompt.NewTemplate("You are a helpful assistant."),
		deps.extractor,
		deps.notifier,
		&common.RetrievalConfig{Threshold: 0.2, Limit: 1, TokenBudget: 1500},
		logger,
	)
	return orch, deps
}

func TestAsk_EndToEndWithContext(t *testing.T) {
	orch, deps := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := orch.IngestText(ctx, "The capital of France is Paris.")
	require.NoError(t, err)

	turn, err := orch.Ask(ctx, "What is the capital of France?")
	require.NoError(t, err)

	assert.Equal(t, models.StageDone, turn.Stage)
	require.NotNil(t, turn.Answer)
	assert.Contains(t, *turn.Answer, "Paris")
	assert.True(t, turn.ContextUsed)
	assert.Equal(t, 10, turn.UsedTokens)

	// The stored passage and the question both reach the generator.
	assert.Contains(t, deps.generator.lastPrompt(), "The capital of France is Paris.")
	assert.Contains(t, deps.generator.lastPrompt(), "What is the capital of France?")

	assert.Equal(t, []models.TurnStage{
		models.StageEmbedding,
		models.StageSearching,
		models.StageAssembling,
		models.StageGenerating,
		models.StageDone,
	}, deps.notifier.stages())
}

func TestAsk_EmptyStoreStillAnswers(t *testing.T) {
	orch, deps := newTestOrchestrator(t)

	turn, err := orch.Ask(context.Background(), "What do dreams of water mean?")
	require.NoError(t, err)

	assert.Equal(t, models.StageDone, turn.Stage)
	require.NotNil(t, turn.Answer)
	assert.False(t, turn.ContextUsed)
	assert.Equal(t, 0, turn.UsedTokens)

	// Without matches the rendered prompt still carries the question.
	assert.Contains(t, deps.generator.lastPrompt(), "What do dreams of water mean?")
}

func TestAsk_EmbeddingFailureFallback(t *testing.T) {
	orch, deps := newTestOrchestrator(t)
	deps.embedder.err = models.EmbeddingError(errors.New("backend down"))

	turn, err := orch.Ask(context.Background(), "a question")
	require.NoError(t, err)

	assert.Equal(t, models.StageError, turn.Stage)
	assert.Equal(t, models.StageEmbedding, turn.FailedStage)
	require.NotNil(t, turn.Answer)
	assert.NotEmpty(t, *turn.Answer)

	// The pipeline never reached generation.
	assert.Empty(t, deps.generator.prompts)
}

func TestAsk_GenerationFailureFallback(t *testing.T) {
	orch, deps := newTestOrchestrator(t)
	deps.generator.err = models.GenerationError(errors.New("rate limited"))

	turn, err := orch.Ask(context.Background(), "a question")
	require.NoError(t, err)

	assert.Equal(t, models.StageError, turn.Stage)
	assert.Equal(t, models.StageGenerating, turn.FailedStage)
	require.NotNil(t, turn.Answer)
	assert.NotEmpty(t, *turn.Answer)

	// The failed turn is still recorded with its fallback answer.
	history := orch.History()
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Answer)
	assert.Equal(t, *turn.Answer, *history[0].Answer)
}

func TestAsk_BlankQuestionRejected(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.Ask(context.Background(), "   \n\t ")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmptyQuestion)

	// Nothing is appended for a rejected submission.
	assert.Empty(t, orch.History())
}

func TestHistory_PreservesSubmissionOrder(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	_, err := orch.Ask(ctx, "first question")
	require.NoError(t, err)
	_, err = orch.Ask(ctx, "second question")
	require.NoError(t, err)

	history := orch.History()
	require.Len(t, history, 2)
	assert.Equal(t, "first question", history[0].Question)
	assert.Equal(t, "second question", history[1].Question)
	assert.True(t, history[0].Stage.Terminal())
	assert.True(t, history[1].Stage.Terminal())
}

func TestIngestText_StoresDocument(t *testing.T) {
	orch, deps := newTestOrchestrator(t)
	ctx := context.Background()

	doc, err := orch.IngestText(ctx, "Dreams of flight often signal a wish for freedom.")
	require.NoError(t, err)

	assert.Contains(t, doc.ID, "doc_")
	assert.Equal(t, 10, doc.TokenCount)

	count, err := deps.storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestText_EmptyRejected(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.IngestText(context.Background(), "   ")
	assert.Error(t, err)
}

func TestIngestPDF_ExtractsAndStores(t *testing.T) {
	orch, deps := newTestOrchestrator(t)
	deps.extractor.text = "Extracted dream lore."

	doc, err := orch.IngestPDF(context.Background(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)

	assert.Equal(t, "Extracted dream lore.", doc.Text)
}

func TestIngestPDF_ExtractionFailure(t *testing.T) {
	orch, deps := newTestOrchestrator(t)
	deps.extractor.err = errors.New("corrupt file")

	_, err := orch.IngestPDF(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
