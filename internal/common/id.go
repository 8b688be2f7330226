package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewTurnID generates a unique conversation turn ID with the "turn_" prefix
func NewTurnID() string {
	return "turn_" + uuid.New().String()
}
