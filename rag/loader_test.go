package rag

import (
	"bytes"
	"errors"
	"testing"
)

func TestLoadDocument_Text(t *testing.T) {
	path := writeDoc(t, "notes.md", "# Notes\n\nSome text.")

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "notes.md" {
		t.Fatalf("expected source 'notes.md', got %s", doc.Source)
	}
	if doc.Content != "# Notes\n\nSome text." {
		t.Fatalf("unexpected content %q", doc.Content)
	}
}

func TestLoadDocument_Empty(t *testing.T) {
	_, err := LoadDocument(writeDoc(t, "empty.txt", ""))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestLoadDocument_BrokenPDF(t *testing.T) {
	if _, err := LoadDocument(writeDoc(t, "broken.pdf", "this is plainly not a pdf document")); err == nil {
		t.Fatalf("expected error for invalid pdf")
	}
}

func TestExtractPDFText_Invalid(t *testing.T) {
	data := []byte("definitely not a pdf")
	if _, err := ExtractPDFText(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatalf("expected error for invalid pdf")
	}
}
