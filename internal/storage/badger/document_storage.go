package badger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/oneiro-app/oneiro/internal/common"
	"github.com/oneiro-app/oneiro/internal/interfaces"
	"github.com/oneiro-app/oneiro/internal/models"
)

// DocumentStorage implements the DocumentStorage interface on Badger.
// Similarity search is brute-force cosine over all stored documents,
// which is plenty for the corpus sizes this store serves.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	mu        sync.Mutex // guards dimension and nextSeq across inserts
	dimension int        // established by the first insert, 0 while empty
	nextSeq   uint64
}

// NewDocumentStorage creates a DocumentStorage, re-establishing the
// store's dimensionality and insertion sequence from existing records.
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) (interfaces.DocumentStorage, error) {
	s := &DocumentStorage{
		db:     db,
		logger: logger,
	}

	var docs []models.Document
	if err := db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to scan existing documents: %w", err)
	}
	for i := range docs {
		if s.dimension == 0 {
			s.dimension = len(docs[i].Embedding)
		}
		if docs[i].Seq >= s.nextSeq {
			s.nextSeq = docs[i].Seq + 1
		}
	}

	logger.Debug().
		Int("documents", len(docs)).
		Int("dimension", s.dimension).
		Msg("Document storage opened")

	return s, nil
}

func (s *DocumentStorage) Insert(ctx context.Context, text string, vector []float32, tokenCount int) (*models.Document, error) {
	if text == "" {
		return nil, fmt.Errorf("document text is required")
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("document embedding is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, models.DimensionError(s.dimension, len(vector))
	}

	doc := &models.Document{
		ID:         common.NewDocumentID(),
		Text:       text,
		Embedding:  vector,
		TokenCount: tokenCount,
		Seq:        s.nextSeq,
		CreatedAt:  time.Now(),
	}

	if err := s.db.Store().Insert(doc.ID, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if s.dimension == 0 {
		s.dimension = len(vector)
	}
	s.nextSeq++

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Int("token_count", doc.TokenCount).
		Int("dimension", len(vector)).
		Msg("Document inserted")

	return doc, nil
}

func (s *DocumentStorage) Search(ctx context.Context, queryVector []float32, threshold float64, limit int) ([]models.QueryMatch, error) {
	if limit <= 0 {
		return []models.QueryMatch{}, nil
	}

	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]models.QueryMatch, 0, len(docs))
	for i := range docs {
		sim := cosineSimilarity(queryVector, docs[i].Embedding)
		if sim >= threshold {
			matches = append(matches, models.QueryMatch{
				Document:   &docs[i],
				Similarity: sim,
			})
		}
	}

	// Rank by similarity descending; equal scores keep insertion order
	// so results stay reproducible.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Document.Seq < matches[j].Document.Seq
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	s.logger.Debug().
		Int("candidates", len(docs)).
		Int("matches", len(matches)).
		Str("threshold", fmt.Sprintf("%.2f", threshold)).
		Msg("Similarity search complete")

	return matches, nil
}

func (s *DocumentStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) Stats(ctx context.Context) (*models.StoreStats, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	dim := s.dimension
	s.mu.Unlock()

	return &models.StoreStats{
		TotalDocuments: total,
		Dimension:      dim,
		LastUpdated:    time.Now(),
	}, nil
}

func (s *DocumentStorage) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Store().DeleteMatching(&models.Document{}, &badgerhold.Query{}); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}

	s.dimension = 0
	s.nextSeq = 0

	s.logger.Info().Msg("Document store reset")
	return nil
}

// Close releases storage resources. The underlying connection is owned
// by BadgerDB and closed there.
func (s *DocumentStorage) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Returns 0 for zero-length or zero-norm vectors.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
