// Package llm provides the text-generation client shared by the resolver
// and the summarizer.
package llm

import "context"

// Completer is the interface for interacting with an LLM.
type Completer interface {
	// Complete sends a prompt and returns the response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
