package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/models"
)

// fakeQueryService satisfies interfaces.QueryService for handler tests.
type fakeQueryService struct {
	turn    *models.ConversationTurn
	askErr  error
	history []models.ConversationTurn
	doc     *models.Document
	ingErr  error
}

func (f *fakeQueryService) Ask(ctx context.Context, question string) (*models.ConversationTurn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, models.ErrEmptyQuestion
	}
	return f.turn, f.askErr
}

func (f *fakeQueryService) History() []models.ConversationTurn {
	return f.history
}

func (f *fakeQueryService) IngestText(ctx context.Context, text string) (*models.Document, error) {
	return f.doc, f.ingErr
}

func (f *fakeQueryService) IngestPDF(ctx context.Context, pdf []byte) (*models.Document, error) {
	return f.doc, f.ingErr
}

func doneTurn(question, answer string) *models.ConversationTurn {
	return &models.ConversationTurn{
		ID:       "turn_test",
		Question: question,
		Answer:   &answer,
		Stage:    models.StageDone,
	}
}

func TestAskHandler_Success(t *testing.T) {
	svc := &fakeQueryService{turn: doneTurn("what is this dream", "an interpretation")}
	handler := NewQueryHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"question":"what is this dream"}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var turn models.ConversationTurn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, "turn_test", turn.ID)
	require.NotNil(t, turn.Answer)
	assert.Equal(t, "an interpretation", *turn.Answer)
}

func TestAskHandler_BlankQuestion(t *testing.T) {
	svc := &fakeQueryService{}
	handler := NewQueryHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"question":"  "}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_InvalidJSON(t *testing.T) {
	handler := NewQueryHandler(&fakeQueryService{}, arbor.NewLogger())

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHandler_MethodNotAllowed(t *testing.T) {
	handler := NewQueryHandler(&fakeQueryService{}, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/query", nil)
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistoryHandler_ReturnsTurns(t *testing.T) {
	svc := &fakeQueryService{
		history: []models.ConversationTurn{
			*doneTurn("first", "answer one"),
			*doneTurn("second", "answer two"),
		},
	}
	handler := NewQueryHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/history", nil)
	rec := httptest.NewRecorder()

	handler.HistoryHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Turns []models.ConversationTurn `json:"turns"`
		Count int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Turns, 2)
	assert.Equal(t, "first", body.Turns[0].Question)
}
