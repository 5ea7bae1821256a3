package rag

import "errors"

var (
	ErrEmptyDocument = errors.New("document has no text")
	ErrNoResults     = errors.New("retrieval returned no chunks")
)

// Document loaded from disk or an upload
type Document struct {
	Source  string // filename or doc ID
	Content string
}

// Chunk of a document
type Chunk struct {
	ID        string
	Content   string
	Source    string
	Index     int
	Embedding []float64 `json:"-"`
}

// Simple query result
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Answer produced by the pipeline, with the chunks it was conditioned on.
type Answer struct {
	Query   string
	Text    string
	Sources []SearchResult
}
