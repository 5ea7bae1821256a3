package rag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadDocument reads a text or PDF file into a Document. The file extension
// decides the format; anything that is not .pdf is read as plain text.
func LoadDocument(path string) (Document, error) {
	var (
		text string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = readPDFFile(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	return Document{Source: filepath.Base(path), Content: text}, nil
}

func readPDFFile(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()
	return plainText(rdr)
}

// ExtractPDFText pulls the plain text out of an in-memory or uploaded PDF.
func ExtractPDFText(r io.ReaderAt, size int64) (string, error) {
	rdr, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	return plainText(rdr)
}

func plainText(rdr *pdf.Reader) (string, error) {
	b, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}
	return buf.String(), nil
}
