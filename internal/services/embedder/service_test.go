package embedder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/models"
)

type fakeBackend struct {
	embedErr  error
	countErr  error
	vector    []float32
	tokens    int
	dimension int
	lastText  string
}

func (f *fakeBackend) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.lastText = text
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.vector, nil
}

func (f *fakeBackend) CountTokens(ctx context.Context, text string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.tokens, nil
}

func (f *fakeBackend) EmbedModelName() string { return "fake-embed" }
func (f *fakeBackend) EmbedDimension() int    { return f.dimension }

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		vector:    []float32{0.1, 0.2, 0.3},
		tokens:    42,
		dimension: 3,
	}
}

func TestEmbed_ReturnsVectorAndTokenCount(t *testing.T) {
	backend := newFakeBackend()
	service := NewService(backend, arbor.NewLogger())

	result, err := service.Embed(context.Background(), "a dream about water")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, result.Vector)
	assert.Equal(t, 42, result.TokenCount)
}

func TestEmbed_CollapsesNewlines(t *testing.T) {
	backend := newFakeBackend()
	service := NewService(backend, arbor.NewLogger())

	_, err := service.Embed(context.Background(), "line one\nline two\n\n  line three  ")
	require.NoError(t, err)

	assert.Equal(t, "line one line two line three", backend.lastText)
}

func TestEmbed_EmptyInputRejected(t *testing.T) {
	service := NewService(newFakeBackend(), arbor.NewLogger())

	_, err := service.Embed(context.Background(), "  \n\t ")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbeddingFailure)
}

func TestEmbed_BackendErrorWrapped(t *testing.T) {
	backend := newFakeBackend()
	backend.embedErr = errors.New("api unavailable")
	service := NewService(backend, arbor.NewLogger())

	_, err := service.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbeddingFailure)
}

func TestEmbed_WrongShapeRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.vector = []float32{0.1} // shorter than the declared dimension
	service := NewService(backend, arbor.NewLogger())

	_, err := service.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbeddingFailure)
}

func TestEmbed_TokenCountErrorWrapped(t *testing.T) {
	backend := newFakeBackend()
	backend.countErr = errors.New("count failed")
	service := NewService(backend, arbor.NewLogger())

	_, err := service.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbeddingFailure)
}

func TestDimensionAndModelName(t *testing.T) {
	service := NewService(newFakeBackend(), arbor.NewLogger())

	assert.Equal(t, 3, service.Dimension())
	assert.Equal(t, "fake-embed", service.ModelName())
}
