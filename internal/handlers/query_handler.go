package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/models"
)

// QueryHandler exposes the question/answer pipeline over HTTP
type QueryHandler struct {
	queryService interfaces.QueryService
	logger       arbor.ILogger
}

func NewQueryHandler(queryService interfaces.QueryService, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
	}
}

type queryRequest struct {
	Question string `json:"question"`
}

// AskHandler runs a question through the pipeline and returns the
// finished turn. Pipeline-stage failures still produce a 200 with a
// fallback answer; only malformed requests are client errors.
func (h *QueryHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	turn, err := h.queryService.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, models.ErrEmptyQuestion) {
			WriteError(w, http.StatusBadRequest, "Question must not be empty")
			return
		}
		h.logger.Error().Err(err).Msg("Query failed")
		WriteError(w, http.StatusInternalServerError, "Query failed")
		return
	}

	WriteJSON(w, http.StatusOK, turn)
}

// HistoryHandler returns all turns in submission order
func (h *QueryHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	history := h.queryService.History()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"turns": history,
		"count": len(history),
	})
}
