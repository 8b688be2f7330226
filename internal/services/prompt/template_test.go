package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_ContainsAllSections(t *testing.T) {
	tmpl := NewTemplate("You interpret dreams.")

	result := tmpl.Render("the falling dream passage", "I dreamed I was falling")

	assert.True(t, strings.HasPrefix(result, "You interpret dreams."))
	assert.Contains(t, result, "Reference passages:\nthe falling dream passage")
	assert.Contains(t, result, "Dream description:\nI dreamed I was falling")
}

func TestRender_EmptyContext(t *testing.T) {
	tmpl := NewTemplate("preamble")

	result := tmpl.Render("", "a question")

	// The question and preamble survive; the reference section is
	// simply empty.
	assert.Contains(t, result, "preamble")
	assert.Contains(t, result, "a question")
	assert.Contains(t, result, "Reference passages:\n\n")
}

func TestRender_Idempotent(t *testing.T) {
	tmpl := NewTemplate("preamble")

	first := tmpl.Render("ctx", "question")
	second := tmpl.Render("ctx", "question")

	assert.Equal(t, first, second)
}

func TestRender_QuestionOrderAfterContext(t *testing.T) {
	tmpl := NewTemplate("preamble")

	result := tmpl.Render("reference text", "the question")

	ctxPos := strings.Index(result, "reference text")
	qPos := strings.Index(result, "the question")
	assert.Greater(t, qPos, ctxPos)
}
