package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/websearch/internal/model"
)

// Write encodes every document as one JSON line.
func Write(w io.Writer, c *Corpus) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, doc := range c.docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode doc_id %d: %w", doc.DocID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus: %w", err)
	}
	return nil
}

// WriteFile writes the corpus to path.
// The data goes to a temporary file in the same directory which is renamed
// over path only after a complete write.
func WriteFile(path string, c *Corpus) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Write(w, c)
	})
}

// Read decodes a JSONL corpus. Blank lines are skipped.
func Read(r io.Reader) (*Corpus, error) {
	c := New()
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			doc, decodeErr := decodeDocument(trimmed)
			if decodeErr != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, decodeErr)
			}
			if addErr := c.Add(doc); addErr != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, addErr)
			}
		}

		if errors.Is(err, io.EOF) {
			return c, nil
		}
	}
}

// ReadFile reads a JSONL corpus from path.
func ReadFile(path string) (*Corpus, error) {
	f, err := os.Open(path) //nolint:gosec // Corpus path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func decodeDocument(line []byte) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(line, &doc); err != nil {
		return nil, fmt.Errorf("malformed document: %w", err)
	}
	return &doc, nil
}

// writeAtomic streams into a temp file next to path and renames it on success.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}
