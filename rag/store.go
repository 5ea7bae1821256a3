package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	chunks []Chunk
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chunks: []Chunk{},
	}
}

func (s *InMemoryStore) Add(chunks ...Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// naive cosine similarity
func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Search returns up to topK chunks by descending score. Ties keep insertion
// order.
func (s *InMemoryStore) Search(queryEmbedding []float64, topK int) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.chunks))
	for _, ch := range s.chunks {
		results = append(results, SearchResult{
			Chunk: ch,
			Score: cosine(queryEmbedding, ch.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

// Clear empties the store and returns how many chunks it held.
func (s *InMemoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.chunks)
	s.chunks = nil
	return n
}

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]SearchResult, error)
}

// VectorRetriever embeds the query and searches a store.
type VectorRetriever struct {
	Store    *InMemoryStore
	Embedder Embedder
	K        int
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]SearchResult, error) {
	vs, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vs))
	}
	return r.Store.Search(vs[0], r.K), nil
}
