// Package mupdf turns PDFs into page primitives. The primary path shells out
// to mutool run with an embedded dump script; go-fitz backs the cheaper
// open/count/render operations that need no primitive detail.
package mupdf

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/pagedata"
)

//go:embed pagedump.js
var pageDumpScript []byte

// Runner drives the mutool binary.
type Runner struct {
	mutoolPath string
}

// NewRunner locates mutool on PATH.
func NewRunner() (*Runner, error) {
	path, err := exec.LookPath("mutool")
	if err != nil {
		return nil, fmt.Errorf("mutool not found on PATH: %w", err)
	}
	return &Runner{mutoolPath: path}, nil
}

// DumpPages extracts every page's text spans and drawn shapes from a PDF.
func (r *Runner) DumpPages(ctx context.Context, pdfPath string) (pagedata.Document, error) {
	script, err := os.CreateTemp("", "pagedump-*.js")
	if err != nil {
		return pagedata.Document{}, fmt.Errorf("create dump script: %w", err)
	}
	defer os.Remove(script.Name())

	if _, err := script.Write(pageDumpScript); err != nil {
		script.Close()
		return pagedata.Document{}, fmt.Errorf("write dump script: %w", err)
	}
	if err := script.Close(); err != nil {
		return pagedata.Document{}, fmt.Errorf("close dump script: %w", err)
	}

	log.Debug().Str("pdf", pdfPath).Msg("dumping page primitives with mutool")

	cmd := exec.CommandContext(ctx, r.mutoolPath, "run", script.Name(), pdfPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return pagedata.Document{}, fmt.Errorf("mutool run failed: %s", msg)
		}
		return pagedata.Document{}, fmt.Errorf("mutool run failed: %w", err)
	}

	doc, err := pagedata.Decode(&stdout)
	if err != nil {
		return pagedata.Document{}, fmt.Errorf("parse page dump: %w", err)
	}

	log.Debug().
		Str("pdf", pdfPath).
		Int("pages", len(doc.Pages)).
		Msg("page primitives extracted")

	return doc, nil
}
