package rag

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into chunks of at most Size runes, trying paragraph,
// line and word boundaries before falling back to single characters.
// Consecutive chunks repeat up to Overlap runes of trailing pieces.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

func NewSplitter(size, overlap int) *Splitter {
	return &Splitter{
		Size:       size,
		Overlap:    overlap,
		Separators: defaultSeparators,
	}
}

// Split returns the document's chunks, numbered from 1 in document order.
func (s *Splitter) Split(doc Document) []Chunk {
	seps := s.Separators
	if len(seps) == 0 {
		seps = defaultSeparators
	}

	var chunks []Chunk
	for _, text := range s.split(doc.Content, seps) {
		chunks = append(chunks, Chunk{
			ID:      doc.Source + "-" + strconv.Itoa(len(chunks)+1),
			Content: text,
			Source:  doc.Source,
			Index:   len(chunks),
		})
	}
	return chunks
}

func (s *Splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, c := range seps {
		if c == "" {
			sep = ""
			break
		}
		if strings.Contains(text, c) {
			sep = c
			rest = seps[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeep(text, sep) {
		if utf8.RuneCountInString(piece) < s.Size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			if t := strings.TrimSpace(piece); t != "" {
				out = append(out, t)
			}
			continue
		}
		out = append(out, s.split(piece, rest)...)
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs pieces into chunks no longer than Size and carries a tail of
// at most Overlap runes into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)
	flush := func() {
		if t := strings.TrimSpace(strings.Join(current, "")); t != "" {
			out = append(out, t)
		}
	}

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > s.Size && len(current) > 0 {
			flush()
			for len(current) > 0 && (total > s.Overlap || total+n > s.Size) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if len(current) > 0 {
		flush()
	}
	return out
}

// splitKeep splits text on sep and keeps the separator at the start of the
// piece that follows it. An empty sep splits into runes.
func splitKeep(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
