package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (turn stage events)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Query pipeline
	mux.HandleFunc("/api/query", s.app.QueryHandler.AskHandler)       // POST - ask a question
	mux.HandleFunc("/api/history", s.app.QueryHandler.HistoryHandler) // GET - conversation history

	// API routes - Reference documents
	mux.HandleFunc("/api/documents/stats", s.app.DocumentHandler.StatsHandler)
	mux.HandleFunc("/api/documents/pdf", s.app.DocumentHandler.IngestPDFHandler)
	mux.HandleFunc("/api/documents", s.handleDocumentsRoute) // POST (ingest), DELETE (reset)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unknown API paths
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleDocumentsRoute dispatches /api/documents by method
func (s *Server) handleDocumentsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.app.DocumentHandler.IngestTextHandler(w, r)
	case http.MethodDelete:
		s.app.DocumentHandler.ResetHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
