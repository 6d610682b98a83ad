package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/websearch/internal/model"
)

// ManifestPath returns the manifest location for a corpus file:
// "pages.jsonl" becomes "pages.manifest.json".
func ManifestPath(corpusPath string) string {
	ext := filepath.Ext(corpusPath)
	return strings.TrimSuffix(corpusPath, ext) + ".manifest.json"
}

// NewManifest describes a finished crawl of c.
func NewManifest(c *Corpus, corpusPath string, seeds, allowedDomains []string, maxPages, maxDepth int, delay time.Duration, startedAt, finishedAt time.Time) *model.Manifest {
	return &model.Manifest{
		CrawlID:        uuid.NewString(),
		TotalDocuments: c.Len(),
		Corpus:         corpusPath,
		Seeds:          seeds,
		AllowedDomains: allowedDomains,
		MaxPages:       maxPages,
		MaxDepth:       maxDepth,
		Delay:          delay.Seconds(),
		StartedAt:      startedAt.UTC(),
		FinishedAt:     finishedAt.UTC(),
		URLToID:        c.URLToID(),
	}
}

// WriteManifest writes m as indented JSON, atomically.
func WriteManifest(path string, m *model.Manifest) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return nil
	})
}

// ReadManifest reads a manifest file.
func ReadManifest(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Manifest path is derived from the corpus path
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m model.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
