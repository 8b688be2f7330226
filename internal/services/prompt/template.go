package prompt

import (
	"strings"
)

// Template renders the final prompt handed to the generation backend:
// a fixed persona preamble, the assembled context, and the user's
// question in a fixed textual layout. Purely structural - no branching
// on content, no hidden state, no timestamps.
type Template struct {
	preamble string
}

// NewTemplate creates a template with the given persona preamble.
func NewTemplate(preamble string) *Template {
	return &Template{preamble: preamble}
}

// Render combines preamble, context and question. Neither the question
// nor the context is ever dropped: an empty context renders as an empty
// reference section, so the persona instructions alone frame the answer.
func (t *Template) Render(context, question string) string {
	var b strings.Builder
	b.WriteString(t.preamble)
	b.WriteString("\n\nReference passages:\n")
	b.WriteString(context)
	b.WriteString("\n\nDream description:\n")
	b.WriteString(question)
	return b.String()
}
