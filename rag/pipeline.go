package rag

import (
	"context"
	"fmt"

	"github.com/apex/log"
)

// embedBatch bounds the number of inputs sent per embeddings request.
const embedBatch = 256

// Pipeline wires the loader, splitter, embedder, store and generator into
// ingest, index and answer steps.
type Pipeline struct {
	Splitter  *Splitter
	Embedder  Embedder
	Generator Generator
	TopK      int
	Log       log.Interface
}

func (p *Pipeline) logger() log.Interface {
	if p.Log == nil {
		return log.Log
	}
	return p.Log
}

// Ingest loads the file at path and splits it into chunks.
func (p *Pipeline) Ingest(ctx context.Context, path string) ([]Chunk, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	chunks := p.Splitter.Split(doc)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	p.logger().WithFields(log.Fields{
		"source": doc.Source,
		"chunks": len(chunks),
	}).Info("document ingested")
	return chunks, nil
}

// Embed fills in the Embedding of every chunk.
func (p *Pipeline) Embed(ctx context.Context, chunks []Chunk) error {
	for start := 0; start < len(chunks); start += embedBatch {
		end := min(start+embedBatch, len(chunks))
		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.Content)
		}
		vs, err := p.Embedder.Embed(ctx, texts...)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(vs) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vs))
		}
		for i, v := range vs {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// Index embeds chunks into store and returns a retriever over it. A nil
// store gets a fresh one.
func (p *Pipeline) Index(ctx context.Context, store *InMemoryStore, chunks []Chunk) (*VectorRetriever, error) {
	if err := p.Embed(ctx, chunks); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewInMemoryStore()
	}
	store.Add(chunks...)
	p.logger().WithField("chunks", store.Len()).Debug("index updated")
	return p.Retriever(store), nil
}

func (p *Pipeline) Retriever(store *InMemoryStore) *VectorRetriever {
	return &VectorRetriever{Store: store, Embedder: p.Embedder, K: p.TopK}
}

// Answer retrieves context for query and generates an answer from it.
func (p *Pipeline) Answer(ctx context.Context, query string, r Retriever) (Answer, error) {
	results, err := r.Retrieve(ctx, query)
	if err != nil {
		return Answer{}, err
	}
	if len(results) == 0 {
		return Answer{}, ErrNoResults
	}

	sources := make([]Chunk, len(results))
	for i, res := range results {
		sources[i] = res.Chunk
	}
	text, err := p.Generator.Generate(ctx, query, sources)
	if err != nil {
		return Answer{}, err
	}
	p.logger().WithFields(log.Fields{
		"query":   query,
		"sources": len(results),
	}).Info("answer generated")
	return Answer{Query: query, Text: text, Sources: results}, nil
}

// Run ingests path, indexes it and answers query in one shot.
func (p *Pipeline) Run(ctx context.Context, path, query string) (Answer, error) {
	chunks, err := p.Ingest(ctx, path)
	if err != nil {
		return Answer{}, err
	}
	r, err := p.Index(ctx, nil, chunks)
	if err != nil {
		return Answer{}, err
	}
	return p.Answer(ctx, query, r)
}
