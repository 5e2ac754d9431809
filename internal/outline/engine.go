// Package outline infers a document's title and heading hierarchy from raw
// page primitives: text spans with position, size and style, plus drawn
// rectangles and images. It is a heuristic classifier, not a verified
// parser; misclassification is an accepted limitation, never an error.
package outline

import (
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/pagedata"
)

// Result is the machine-readable table of contents for one document.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Extract runs the full pipeline over a document's pages: geometry
// filtering, title detection on page 1, document-global classification and
// level assignment. Pages must be in document order. A document with no
// extractable lines yields an empty title and outline.
func Extract(pages []pagedata.Page) Result {
	if len(pages) == 0 {
		return Result{Outline: []Entry{}}
	}

	lines0 := filterPage(pages[0])
	title, titleSize := detectTitle(lines0, pages[0].Height)
	colored := coloredTitleCandidates(lines0)

	all := append([]TextLine(nil), lines0...)
	for _, pg := range pages[1:] {
		all = append(all, filterPage(pg)...)
	}
	// Colored-title candidates join the stream as page-1 entries so the
	// classifier and the mean-size computation both see them.
	for _, ln := range colored {
		ln.Page = 1
		all = append(all, ln)
	}

	if len(all) == 0 {
		return Result{Title: title, Outline: []Entry{}}
	}

	var sum float64
	for _, ln := range all {
		sum += ln.Size
	}
	meanSize := sum / float64(len(all))

	// Largest bold size across the whole stream, independent of acceptance.
	var maxBold float64
	haveBold := false
	for _, ln := range all {
		if ln.Bold() && (!haveBold || ln.Size > maxBold) {
			maxBold = ln.Size
			haveBold = true
		}
	}

	cands := classify(all, title, meanSize, maxBold, haveBold)
	entries := finalize(cands, colored)

	log.Debug().
		Int("pages", len(pages)).
		Int("lines", len(all)).
		Int("headings", len(entries)).
		Str("title", title).
		Float64("title_size", titleSize).
		Msg("outline extracted")

	return Result{Title: title, Outline: entries}
}
