package rag

import "context"

// Embedder turns texts into vectors, one per input and in input order.
type Embedder interface {
	Embed(ctx context.Context, texts ...string) ([][]float64, error)
}

// Simple deterministic fake embedder based on rune counts
type SimpleEmbedder struct{}

func NewSimpleEmbedder() *SimpleEmbedder {
	return &SimpleEmbedder{}
}

func (e *SimpleEmbedder) Embed(_ context.Context, texts ...string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t)
	}
	return out, nil
}

// fake 4D vector: length, vowels, consonants, spaces
func embedOne(text string) []float64 {
	var length, vowels, consonants, spaces float64
	for _, r := range text {
		length++
		switch {
		case r == 'a' || r == 'e' || r == 'i' || r == 'o' || r == 'u' ||
			r == 'A' || r == 'E' || r == 'I' || r == 'O' || r == 'U':
			vowels++
		case r == ' ':
			spaces++
		default:
			consonants++
		}
	}
	return []float64{length, vowels, consonants, spaces}
}
