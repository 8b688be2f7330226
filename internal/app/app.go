package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/handlers"
	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/services/embedder"
	"github.com/oneiro-app/oneiro/internal/services/llm"
	"github.com/oneiro-app/oneiro/internal/services/maintenance"
	"github.com/oneiro-app/oneiro/internal/services/pdf"
	"github.com/oneiro-app/oneiro/internal/services/prompt"
	"github.com/oneiro-app/oneiro/internal/services/query"
	"github.com/oneiro-app/oneiro/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB              *badger.BadgerDB
	DocumentStorage interfaces.DocumentStorage

	// LLM backends
	GeminiService    *llm.GeminiService
	GenerationClient interfaces.GenerationClient

	// Pipeline services
	EmbeddingClient interfaces.EmbeddingClient
	PromptTemplate  *prompt.Template
	PDFExtractor    interfaces.PDFExtractor
	QueryService    interfaces.QueryService

	// Maintenance
	MaintenanceScheduler *maintenance.Scheduler

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	QueryHandler    *handlers.QueryHandler
	DocumentHandler *handlers.DocumentHandler
	WSHandler       *handlers.WebSocketHandler
}

// New creates the application container and wires all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage
	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	docStorage, err := badger.NewDocumentStorage(db, logger)
	if err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	a.DocumentStorage = docStorage

	// LLM backends. Gemini is always created since it serves embeddings
	// regardless of the generation provider.
	gemini, err := llm.NewGeminiService(&cfg.Gemini, logger)
	if err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("failed to initialize Gemini service: %w", err)
	}
	a.GeminiService = gemini

	generation, err := llm.NewGenerationClient(cfg, gemini, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}
	a.GenerationClient = generation

	// Pipeline services
	a.EmbeddingClient = embedder.NewService(gemini, logger)
	a.PromptTemplate = prompt.NewTemplate(cfg.Prompt.Preamble)
	a.PDFExtractor = pdf.NewExtractor(logger)
	a.WSHandler = handlers.NewWebSocketHandler(logger)

	a.QueryService = query.NewOrchestrator(
		a.EmbeddingClient,
		a.DocumentStorage,
		a.GenerationClient,
		a.PromptTemplate,
		a.PDFExtractor,
		a.WSHandler,
		&cfg.Retrieval,
		logger,
	)

	// Maintenance
	if cfg.Maintenance.Enabled {
		a.MaintenanceScheduler = maintenance.NewScheduler(db, logger)
		if err := a.MaintenanceScheduler.Start(cfg.Maintenance.Schedule); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to start maintenance scheduler: %w", err)
		}
	}

	// HTTP handlers
	a.APIHandler = handlers.NewAPIHandler()
	a.QueryHandler = handlers.NewQueryHandler(a.QueryService, logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.QueryService, a.DocumentStorage, logger)

	logger.Info().
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Str("embed_model", cfg.Gemini.EmbedModel).
		Int("embed_dimension", cfg.Gemini.EmbedDimension).
		Float64("threshold", cfg.Retrieval.Threshold).
		Int("limit", cfg.Retrieval.Limit).
		Int("token_budget", cfg.Retrieval.TokenBudget).
		Msg("Application initialized")

	return a, nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.MaintenanceScheduler != nil {
		a.MaintenanceScheduler.Stop()
	}

	if a.GenerationClient != nil {
		if err := a.GenerationClient.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close generation client")
		}
	}

	if a.GeminiService != nil {
		if err := a.GeminiService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close Gemini service")
		}
	}

	if a.DocumentStorage != nil {
		if err := a.DocumentStorage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close document storage")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close database")
			return err
		}
	}

	return nil
}

// Shutdown is a context-aware wrapper around Close
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- a.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
