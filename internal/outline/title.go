package outline

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// titleTopFraction limits title candidates to the top half of page 1.
	titleTopFraction = 0.5
	// titleMergeGap is the maximum vertical distance between two bold lines
	// merged into a single title.
	titleMergeGap = 100.0
	// coloredTopTolerance bounds how far below the topmost line a colored
	// title candidate may start.
	coloredTopTolerance = 1.0
)

// forbiddenTitles are generic form labels that never make a title or an
// outline entry.
var forbiddenTitles = map[string]struct{}{
	"ADDRESS:":   {},
	"NAME:":      {},
	"DATE:":      {},
	"SIGNATURE:": {},
}

// addressRe matches address-like strings: leading digits followed by letters.
var addressRe = regexp.MustCompile(`^\d+.*[A-Za-z]+`)

// detectTitle picks the document title from page 1's filtered lines. Bold
// text in the top half is the primary signal; the top two bold lines merge
// when they sit close together. Returns the title (possibly empty) and its
// font size.
func detectTitle(lines []TextLine, pageHeight float64) (string, float64) {
	var bold []TextLine
	for _, ln := range lines {
		if ln.Bold() && ln.Y0 <= pageHeight*titleTopFraction {
			bold = append(bold, ln)
		}
	}
	sort.SliceStable(bold, func(i, j int) bool { return bold[i].Y0 < bold[j].Y0 })

	var candidate string
	var size float64
	switch {
	case len(bold) >= 2:
		if abs(bold[1].Y0-bold[0].Y0) < titleMergeGap {
			candidate = bold[0].Text + " " + bold[1].Text
			size = max64(bold[0].Size, bold[1].Size)
		} else {
			candidate = bold[0].Text
			size = bold[0].Size
		}
	case len(bold) == 1:
		candidate = bold[0].Text
		size = bold[0].Size
	}

	if !acceptableTitle(candidate) {
		return "", 0
	}
	return candidate, size
}

func acceptableTitle(s string) bool {
	if s == "" {
		return false
	}
	if _, bad := forbiddenTitles[s]; bad {
		return false
	}
	if addressRe.MatchString(s) {
		return false
	}
	if strings.ContainsAny(s, ",-") {
		return false
	}
	return true
}

// coloredTitleCandidates returns page-1 lines at the very top of the page
// whose text color differs from the default. Stylized covers often color the
// title instead of bolding it; these feed the outline as a fallback signal.
func coloredTitleCandidates(lines []TextLine) []TextLine {
	if len(lines) == 0 {
		return nil
	}
	topY := lines[0].Y0
	for _, ln := range lines[1:] {
		if ln.Y0 < topY {
			topY = ln.Y0
		}
	}
	var out []TextLine
	for _, ln := range lines {
		if abs(ln.Y0-topY) < coloredTopTolerance && ln.Colored {
			out = append(out, ln)
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
