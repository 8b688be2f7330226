package interfaces

import (
	"context"

	"github.com/oneiro-app/oneiro/internal/models"
)

// QueryService runs the full query pipeline per user turn and owns the
// append-only conversation history. Each turn runs as an independent
// sequential pipeline; the history preserves submission order.
type QueryService interface {
	// Ask runs one turn: embed, search, assemble, render, generate.
	// Stage-local failures are absorbed - the returned turn is always
	// terminal and always carries an answer (generated or fallback).
	// Only invalid input (blank question) returns an error.
	Ask(ctx context.Context, question string) (*models.ConversationTurn, error)

	// History returns a read-only snapshot of the turn log in
	// submission order.
	History() []models.ConversationTurn

	// IngestText embeds raw reference text and inserts it into the
	// similarity store.
	IngestText(ctx context.Context, text string) (*models.Document, error)

	// IngestPDF extracts text from an uploaded PDF and ingests it like
	// typed text.
	IngestPDF(ctx context.Context, pdf []byte) (*models.Document, error)
}

// TurnEvent is a stage-transition notification for one turn.
type TurnEvent struct {
	TurnID string           `json:"turn_id"`
	Stage  models.TurnStage `json:"stage"`
}

// TurnNotifier receives per-turn stage transitions, e.g. to drive a
// pending indicator in the UI. Implementations must not block the
// pipeline; a lost notification never fails a turn.
type TurnNotifier interface {
	NotifyTurn(event TurnEvent)
}
