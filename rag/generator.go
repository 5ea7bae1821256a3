package rag

import (
	"context"
	"strings"
)

// Generator writes an answer to question conditioned on the retrieved
// sources.
type Generator interface {
	Generate(ctx context.Context, question string, sources []Chunk) (string, error)
}

const systemPrompt = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer."

func buildPrompt(question string, sources []Chunk) string {
	var b strings.Builder
	for i, s := range sources {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Content)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nHelpful Answer:")
	return b.String()
}
