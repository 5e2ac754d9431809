// Package probe decides whether a PDF carries enough real text to be worth
// running through the outline engine, by sampling a few pages and counting
// non-whitespace characters. Scanned documents fail the probe.
package probe

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"time"
)

// DefaultThreshold is the character count used when none is configured.
const DefaultThreshold = 300

// PageSample records the probe result for one sampled page.
type PageSample struct {
	PageIndex int    `json:"page_index"`
	CharCount int    `json:"char_count"`
	Err       string `json:"err,omitempty"`
}

// Report carries the full outcome of a text probe.
type Report struct {
	FilePath     string       `json:"file_path"`
	TotalPages   int          `json:"total_pages"`
	SampledPages []int        `json:"sampled_pages"`
	TotalChars   int          `json:"total_chars"`
	Threshold    int          `json:"threshold"`
	Samples      []PageSample `json:"samples"`
	HasText      bool         `json:"has_text"`
	DurationMs   int64        `json:"duration_ms"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Doc abstracts an open document for sampling.
type Doc interface {
	NumPage() int
	PageText(i int) (string, error)
	Close() error
}

// Opener abstracts opening a document path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// defaultOpener is set to the go-fitz implementation in opener_fitz.go.
var defaultOpener Opener

func setDefaultOpener(o Opener) { defaultOpener = o }

// HasText samples pages of the document at path and reports whether the
// non-whitespace character count reaches threshold. A non-positive threshold
// falls back to DefaultThreshold.
func HasText(path string, threshold int) (bool, *Report, error) {
	return hasText(defaultOpener, path, threshold)
}

func hasText(opener Opener, path string, threshold int) (bool, *Report, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if opener == nil {
		return false, nil, errors.New("no document opener configured")
	}

	start := time.Now()
	doc, err := opener.Open(path)
	if err != nil {
		return false, nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	report := &Report{
		FilePath:     path,
		TotalPages:   total,
		SampledPages: []int{},
		Threshold:    threshold,
	}
	if total <= 0 {
		report.DurationMs = time.Since(start).Milliseconds()
		return false, report, nil
	}

	report.SampledPages = sampleIndices(total)
	for _, idx := range report.SampledPages {
		sample := PageSample{PageIndex: idx}
		text, terr := doc.PageText(idx)
		if terr != nil {
			sample.Err = terr.Error()
			report.Samples = append(report.Samples, sample)
			continue
		}
		sample.CharCount = len([]rune(whitespaceRe.ReplaceAllString(text, "")))
		report.TotalChars += sample.CharCount
		report.Samples = append(report.Samples, sample)

		if report.TotalChars >= threshold {
			break
		}
	}

	report.HasText = report.TotalChars >= threshold
	report.DurationMs = time.Since(start).Milliseconds()
	return report.HasText, report, nil
}

// sampleIndices picks up to 5 pages: everything for small documents, first,
// middle and last plus two random distinct pages otherwise.
func sampleIndices(total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= 5 {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	picked := map[int]struct{}{0: {}, total / 2: {}, total - 1: {}}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for len(picked) < 5 {
		picked[rnd.Intn(total)] = struct{}{}
	}

	out := make([]int, 0, len(picked))
	for i := range picked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
