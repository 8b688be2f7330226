package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/models"
)

// maxPDFUploadSize caps PDF uploads at 32 MB
const maxPDFUploadSize = 32 << 20

// DocumentHandler exposes reference document ingestion and store
// management over HTTP
type DocumentHandler struct {
	queryService interfaces.QueryService
	storage      interfaces.DocumentStorage
	logger       arbor.ILogger
}

func NewDocumentHandler(queryService interfaces.QueryService, storage interfaces.DocumentStorage, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		queryService: queryService,
		storage:      storage,
		logger:       logger,
	}
}

type ingestRequest struct {
	Text string `json:"text"`
}

// IngestTextHandler ingests a typed reference passage
func (h *DocumentHandler) IngestTextHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	doc, err := h.queryService.IngestText(r.Context(), req.Text)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, doc)
}

// IngestPDFHandler ingests a PDF upload. Accepts either a multipart
// form with a "file" field or a raw application/pdf body.
func (h *DocumentHandler) IngestPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	pdfContent, err := h.readPDFUpload(w, r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(pdfContent) == 0 {
		WriteError(w, http.StatusBadRequest, "Empty PDF upload")
		return
	}

	doc, err := h.queryService.IngestPDF(r.Context(), pdfContent)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, doc)
}

// StatsHandler returns document store statistics
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.storage.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read store stats")
		WriteError(w, http.StatusInternalServerError, "Failed to read store stats")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// ResetHandler deletes all stored documents
func (h *DocumentHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	if err := h.storage.Reset(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to reset document store")
		WriteError(w, http.StatusInternalServerError, "Failed to reset document store")
		return
	}

	h.logger.Info().Msg("Document store reset")
	WriteSuccess(w, "Document store reset")
}

func (h *DocumentHandler) readPDFUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPDFUploadSize)

	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		return io.ReadAll(file)
	}

	// Fall back to a raw body upload
	return io.ReadAll(r.Body)
}

func (h *DocumentHandler) writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrDimensionMismatch):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrEmbeddingFailure):
		h.logger.Warn().Err(err).Msg("Document embedding failed")
		WriteError(w, http.StatusBadGateway, "Failed to embed document text")
	default:
		h.logger.Error().Err(err).Msg("Document ingestion failed")
		WriteError(w, http.StatusBadRequest, err.Error())
	}
}
