package models

import (
	"time"
)

// Document is one unit of reference text held in the similarity store.
// The embedding dimensionality is fixed per store; mixing vectors from
// different embedding models is rejected at insertion.
type Document struct {
	ID         string    `json:"id" badgerhold:"key"` // doc_<uuid>
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	TokenCount int       `json:"token_count"` // generation-model tokens for Text
	Seq        uint64    `json:"seq"`         // insertion sequence, used for deterministic tie-breaking
	CreatedAt  time.Time `json:"created_at"`
}

// QueryMatch is a transient ranked result of a similarity search.
type QueryMatch struct {
	Document   *Document `json:"document"`
	Similarity float64   `json:"similarity"`
}

// AssembledContext is the token-budgeted concatenation of matched passages.
type AssembledContext struct {
	Text       string `json:"text"`
	UsedTokens int    `json:"used_tokens"`
}

// StoreStats summarises the similarity store for the status surface.
type StoreStats struct {
	TotalDocuments int       `json:"total_documents"`
	Dimension      int       `json:"dimension"`
	LastUpdated    time.Time `json:"last_updated"`
}
