package rag

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitter_MergesSmallParagraphs(t *testing.T) {
	doc := Document{Source: "test-doc", Content: "Sentence one. Sentence two.\n\nSentence three."}

	chunks := NewSplitter(200, 20).Split(doc)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != doc.Content {
		t.Fatalf("unexpected content %q", chunks[0].Content)
	}
	if chunks[0].Source != "test-doc" {
		t.Fatalf("expected source to be 'test-doc', got %s", chunks[0].Source)
	}
	if chunks[0].ID != "test-doc-1" {
		t.Fatalf("expected id 'test-doc-1', got %s", chunks[0].ID)
	}
}

func TestSplitter_RespectsSizeAndOverlap(t *testing.T) {
	var words []string
	for i := 0; i < 60; i++ {
		words = append(words, fmt.Sprintf("w%02d", i))
	}
	doc := Document{Source: "words", Content: strings.Join(words, " ")}

	chunks := NewSplitter(20, 8).Split(doc)

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if n := utf8.RuneCountInString(ch.Content); n > 20 {
			t.Fatalf("chunk %d has %d runes, limit is 20", i, n)
		}
		if ch.Index != i {
			t.Fatalf("chunk %d has index %d", i, ch.Index)
		}
	}
	for i := 0; i+1 < len(chunks); i++ {
		first := strings.Fields(chunks[i+1].Content)[0]
		if !strings.Contains(chunks[i].Content, first) {
			t.Fatalf("chunk %d should overlap chunk %d: %q vs %q", i+1, i, chunks[i+1].Content, chunks[i].Content)
		}
	}
	if !strings.HasSuffix(chunks[len(chunks)-1].Content, "w59") {
		t.Fatalf("last chunk should end the document, got %q", chunks[len(chunks)-1].Content)
	}
}

func TestSplitter_FallsBackToCharacters(t *testing.T) {
	doc := Document{Source: "runes", Content: strings.Repeat("é", 35)}

	chunks := NewSplitter(10, 0).Split(doc)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if n := utf8.RuneCountInString(ch.Content); n > 10 {
			t.Fatalf("chunk has %d runes, limit is 10", n)
		}
	}
}

func TestSplitter_EmptyInput(t *testing.T) {
	s := NewSplitter(200, 20)

	if chunks := s.Split(Document{Source: "empty"}); len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for empty input, got %d", len(chunks))
	}
	if chunks := s.Split(Document{Source: "blank", Content: " \n\n \n"}); len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for blank input, got %d", len(chunks))
	}
}
