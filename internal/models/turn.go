package models

import (
	"time"
)

// TurnStage is the orchestrator's per-turn state machine position.
type TurnStage string

const (
	StageIdle       TurnStage = "idle"
	StageEmbedding  TurnStage = "embedding"
	StageSearching  TurnStage = "searching"
	StageAssembling TurnStage = "assembling"
	StageGenerating TurnStage = "generating"
	StageDone       TurnStage = "done"
	StageError      TurnStage = "error"
)

// Terminal reports whether the stage ends a turn.
func (s TurnStage) Terminal() bool {
	return s == StageDone || s == StageError
}

// ConversationTurn is one question/answer pair in the visible history.
// Answer is nil while generation is pending; once the turn reaches a
// terminal stage it always carries either the generated answer or a
// fallback notice, never nothing.
type ConversationTurn struct {
	ID          string    `json:"turn_id"` // turn_<uuid>
	Question    string    `json:"question"`
	Answer      *string   `json:"answer"`
	Stage       TurnStage `json:"stage"`
	FailedStage TurnStage `json:"failed_stage,omitempty"` // stage at which the turn failed, if any
	ContextUsed bool      `json:"context_used"`
	UsedTokens  int       `json:"used_tokens"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// Pending reports whether the turn is still in flight.
func (t *ConversationTurn) Pending() bool {
	return !t.Stage.Terminal()
}
