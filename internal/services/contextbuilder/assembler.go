package contextbuilder

import (
	"strings"

	"github.com/oneiro-app/oneiro/internal/models"
)

// Separator is the fixed delimiter between assembled passages.
const Separator = "\n\n"

// Assemble greedily concatenates matched passages in their given ranked
// order until the next passage would exceed tokenBudget. It stops at the
// first passage that does not fit rather than skipping ahead to a
// smaller one: ranking priority wins over packing efficiency. Passages
// are never truncated mid-document.
//
// If the first match alone exceeds the budget the result is an empty
// context, which callers treat as "no usable context", not an error.
// Pure function: identical inputs always produce identical output.
func Assemble(matches []models.QueryMatch, tokenBudget int) models.AssembledContext {
	var parts []string
	usedTokens := 0

	for _, match := range matches {
		if match.Document == nil {
			break
		}
		if usedTokens+match.Document.TokenCount > tokenBudget {
			break
		}
		parts = append(parts, match.Document.Text)
		usedTokens += match.Document.TokenCount
	}

	return models.AssembledContext{
		Text:       strings.Join(parts, Separator),
		UsedTokens: usedTokens,
	}
}
