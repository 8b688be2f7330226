package interfaces

import (
	"context"

	"github.com/oneiro-app/oneiro/internal/models"
)

// DocumentStorage persists documents and answers nearest-neighbour
// queries. The store owns its internal consistency: concurrent inserts
// and searches must never produce a torn record, though an insert
// completing mid-search may or may not be visible to that search.
type DocumentStorage interface {
	// Insert persists a document, assigning its ID and insertion
	// sequence. Returns models.ErrDimensionMismatch (and persists
	// nothing) if vector length differs from the store's established
	// dimensionality.
	Insert(ctx context.Context, text string, vector []float32, tokenCount int) (*models.Document, error)

	// Search returns at most limit matches with similarity >= threshold,
	// ordered by cosine similarity descending, ties broken by insertion
	// sequence. An empty result is a valid empty slice, not an error.
	Search(ctx context.Context, queryVector []float32, threshold float64, limit int) ([]models.QueryMatch, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Stats summarises the store for the status surface.
	Stats(ctx context.Context) (*models.StoreStats, error)

	// Reset removes every document. The store's dimensionality resets
	// with it and is re-established by the next insert.
	Reset(ctx context.Context) error

	// Close releases the underlying database.
	Close() error
}
