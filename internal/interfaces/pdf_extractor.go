package interfaces

import (
	"context"
)

// PDFExtractor extracts plain text from an uploaded PDF. The pipeline
// treats it as an opaque text producer feeding the ingestion path.
type PDFExtractor interface {
	// ExtractText returns the text content of the PDF, pages joined in
	// order. An unreadable or empty PDF is an error.
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}
