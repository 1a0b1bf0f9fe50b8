// internal/prompt/builder_test.go
package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"research-assistant/internal/evidence"
)

func testBundle() evidence.Bundle {
	return evidence.NewBundle(
		[]evidence.SearchResult{{Title: "Hit", Snippet: "snippet", URL: "https://example.com"}},
		evidence.FoundSnippet(evidence.LabelWikipedia, "Page: Topic\nSummary: Something."),
		evidence.MissingSnippet(evidence.LabelArxiv),
	)
}

func TestBuild_SystemInstruction(t *testing.T) {
	p := Build("What is Go?", testBundle())

	assert.Contains(t, p.System, "Use ONLY the provided evidence")
	assert.Contains(t, p.System, "say you don't know")
	assert.Contains(t, p.System, "4-6 sentences")
	assert.Contains(t, p.System, "[Wikipedia], [arXiv], [DDG]")
	assert.Contains(t, p.System, "Do not fabricate URLs")
}

func TestBuild_SystemInstructionIsConstant(t *testing.T) {
	a := Build("first question", testBundle())
	b := Build("second question", evidence.NewBundle(nil,
		evidence.MissingSnippet(evidence.LabelWikipedia),
		evidence.MissingSnippet(evidence.LabelArxiv)))

	assert.Equal(t, a.System, b.System)
}

func TestBuild_UserMessage(t *testing.T) {
	p := Build("What is Go?", testBundle())

	assert.True(t, strings.HasPrefix(p.User, "Question:\nWhat is Go?\n\nEvidence:\n"))
	assert.Contains(t, p.User, "== DuckDuckGo ==")
	assert.Contains(t, p.User, "== Wikipedia ==")
	assert.Contains(t, p.User, "== arXiv ==")
	assert.Contains(t, p.User, "- Hit (https://example.com)")
	assert.Contains(t, p.User, "No arXiv result found for this query.")
}

func TestBuild_EvidenceEmbeddedVerbatim(t *testing.T) {
	bundle := testBundle()
	p := Build("q", bundle)

	assert.Contains(t, p.User, bundle.Render())
}
