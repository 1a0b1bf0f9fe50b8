// internal/prompt/builder.go

// Package prompt assembles the fixed two-part instruction handed to the
// synthesis model. The wording is deliberately constant across queries so
// answer style stays stable.
package prompt

import (
	"fmt"

	"research-assistant/internal/evidence"
)

// systemInstruction constrains the model to the supplied evidence, a short
// answer length, and inline source citations.
const systemInstruction = "You are a precise research assistant. " +
	"Use ONLY the provided evidence to answer. " +
	"If the evidence is insufficient, say you don't know. " +
	"Keep it to 4-6 sentences. " +
	"Cite sources inline briefly (e.g., [Wikipedia], [arXiv], [DDG]). " +
	"Do not fabricate URLs."

// Prompt is the system/user message pair sent to the chat completion API.
type Prompt struct {
	System string
	User   string
}

// Build renders the question and the full evidence bundle into a prompt.
// The evidence text is embedded verbatim; nothing is summarized or dropped
// at this stage.
func Build(question string, bundle evidence.Bundle) Prompt {
	return Prompt{
		System: systemInstruction,
		User:   fmt.Sprintf("Question:\n%s\n\nEvidence:\n%s", question, bundle.Render()),
	}
}
