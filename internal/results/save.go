// Package results persists finished outlines as JSON documents named after
// the source file.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/outline"
)

// Document is the persisted result envelope around an outline.
type Document struct {
	Source      string          `json:"source"`
	Title       string          `json:"title"`
	Outline     []outline.Entry `json:"outline"`
	Pages       int             `json:"pages"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// New wraps an engine result for persistence.
func New(source string, pages int, res outline.Result) Document {
	return Document{
		Source:      source,
		Title:       res.Title,
		Outline:     res.Outline,
		Pages:       pages,
		GeneratedAt: time.Now().UTC(),
	}
}

// BaseName returns the result file stem for a source path or reference:
// the last path element without its extension.
func BaseName(source string) string {
	base := filepath.Base(source)
	if i := strings.Index(base, "#"); i >= 0 {
		base = base[:i]
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		return "document"
	}
	return stem
}

// Save writes the document to dir/<stem>.json and returns the path.
func Save(dir string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	path := filepath.Join(dir, BaseName(doc.Source)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("headings", len(doc.Outline)).
		Msg("saved outline result")

	return path, nil
}
