package contextbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneiro-app/oneiro/internal/models"
)

func match(text string, tokens int, seq uint64) models.QueryMatch {
	return models.QueryMatch{
		Document: &models.Document{
			ID:         "doc_test",
			Text:       text,
			TokenCount: tokens,
			Seq:        seq,
		},
		Similarity: 0.9,
	}
}

func TestAssemble_WithinBudget(t *testing.T) {
	matches := []models.QueryMatch{
		match("first passage", 100, 0),
		match("second passage", 200, 1),
	}

	result := Assemble(matches, 1500)

	assert.Equal(t, "first passage\n\nsecond passage", result.Text)
	assert.Equal(t, 300, result.UsedTokens)
}

func TestAssemble_NeverExceedsBudget(t *testing.T) {
	matches := []models.QueryMatch{
		match("a", 600, 0),
		match("b", 600, 1),
		match("c", 600, 2),
	}

	result := Assemble(matches, 1500)

	// Two passages fit exactly within 1500; the third would exceed it.
	assert.Equal(t, 1200, result.UsedTokens)
	assert.LessOrEqual(t, result.UsedTokens, 1500)
	assert.Equal(t, "a\n\nb", result.Text)
}

func TestAssemble_ExactBudgetFits(t *testing.T) {
	matches := []models.QueryMatch{
		match("a", 1000, 0),
		match("b", 500, 1),
	}

	result := Assemble(matches, 1500)

	assert.Equal(t, 1500, result.UsedTokens)
	assert.Equal(t, "a\n\nb", result.Text)
}

func TestAssemble_StopsAtFirstOversized(t *testing.T) {
	matches := []models.QueryMatch{
		match("big", 2000, 0),
		match("small", 10, 1),
	}

	result := Assemble(matches, 1500)

	// The top-ranked passage does not fit, so assembly stops rather
	// than skipping ahead to the smaller one.
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0, result.UsedTokens)
}

func TestAssemble_MiddleOversizedStopsAssembly(t *testing.T) {
	matches := []models.QueryMatch{
		match("first", 100, 0),
		match("huge", 5000, 1),
		match("tiny", 1, 2),
	}

	result := Assemble(matches, 1500)

	assert.Equal(t, "first", result.Text)
	assert.Equal(t, 100, result.UsedTokens)
}

func TestAssemble_PreservesRankedOrder(t *testing.T) {
	matches := []models.QueryMatch{
		match("third by insertion", 10, 2),
		match("first by insertion", 10, 0),
		match("second by insertion", 10, 1),
	}

	result := Assemble(matches, 1500)

	// Output follows the ranked order the matches arrived in, not
	// insertion order or length.
	assert.Equal(t, "third by insertion\n\nfirst by insertion\n\nsecond by insertion", result.Text)
}

func TestAssemble_EmptyMatches(t *testing.T) {
	result := Assemble(nil, 1500)

	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0, result.UsedTokens)
}

func TestAssemble_Deterministic(t *testing.T) {
	matches := []models.QueryMatch{
		match("alpha", 50, 0),
		match("beta", 70, 1),
	}

	first := Assemble(matches, 1500)
	second := Assemble(matches, 1500)

	assert.Equal(t, first, second)
}
