package outline

import (
	"strings"

	"github.com/local/outliner/internal/pagedata"
)

// Origin records how a line entered the candidate stream.
type Origin int

const (
	// OriginNormal is a line taken directly from the page text.
	OriginNormal Origin = iota
	// OriginFromBox marks the sole line found inside a drawn rectangle.
	// Such lines are excluded from heading consideration but still carry
	// title-fallback signal (decorative cover boxes).
	OriginFromBox
	// OriginFromAboveBox marks a line sitting directly above a rectangle,
	// typically a table or figure label.
	OriginFromAboveBox
)

// TextLine is one visually merged row of text, the unit the classifier
// operates on. Lines with empty joined text never exist; the geometry
// filter drops them at merge time.
type TextLine struct {
	Text      string
	Size      float64
	Fonts     []string
	Flags     int
	Y0        float64
	Colored   bool
	Page      int
	Origin    Origin
	AboveRect int // index of the rectangle below a fromAboveBox line, -1 otherwise
	BBox      pagedata.Rect
}

// mergeLine collapses a raw span line into a TextLine. Returns false when the
// joined text is empty.
func mergeLine(raw pagedata.Line) (TextLine, bool) {
	var parts []string
	ln := TextLine{AboveRect: -1, BBox: raw.BBox}
	first := true
	for _, sp := range raw.Spans {
		t := strings.TrimSpace(sp.Text)
		if t != "" {
			parts = append(parts, t)
		}
		if sp.Size > ln.Size {
			ln.Size = sp.Size
		}
		ln.Fonts = append(ln.Fonts, sp.Font)
		ln.Flags |= sp.Flags
		if first || sp.BBox.Y0 < ln.Y0 {
			ln.Y0 = sp.BBox.Y0
		}
		first = false
		if sp.Color != pagedata.DefaultColor {
			ln.Colored = true
		}
	}
	ln.Text = strings.Join(parts, " ")
	if ln.Text == "" {
		return TextLine{}, false
	}
	return ln, true
}

// Bold reports whether the line renders bold: a bold font name on any span,
// or the bold style flag.
func (l TextLine) Bold() bool {
	for _, f := range l.Fonts {
		if strings.Contains(f, "Bold") {
			return true
		}
	}
	return l.Flags&pagedata.FlagBold != 0
}
