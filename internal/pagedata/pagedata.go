package pagedata

import (
	"encoding/json"
	"fmt"
	"io"
)

// Style flag bits carried on spans. Bit layout follows the producer contract:
// italic is bit 1, bold is bit 2. The engine treats a span as bold when the
// font name contains "Bold" or FlagBold is set.
const (
	FlagItalic = 1 << 0
	FlagBold   = 1 << 1
)

// DefaultColor is the packed RGB value of default (black) text.
const DefaultColor = 0

// Rect is an axis-aligned rectangle in page coordinates (origin top-left,
// y grows downward, matching MuPDF).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Expand grows the rectangle by m units on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{X0: r.X0 - m, Y0: r.Y0 - m, X1: r.X1 + m, Y1: r.Y1 + m}
}

// Intersects reports whether r and o share interior area. Rectangles that
// merely touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// DrawingKind distinguishes the two drawing primitives the engine cares
// about: filled/stroked rectangles and placed images.
type DrawingKind string

const (
	KindRectangle DrawingKind = "rectangle"
	KindImage     DrawingKind = "image"
)

// Drawing is one vector or image primitive on a page.
type Drawing struct {
	Kind DrawingKind `json:"kind"`
	Rect Rect        `json:"rect"`
}

// Span is a run of text with uniform font, size, style and color.
// Color is packed RGB (0xRRGGBB); 0 means default black text.
type Span struct {
	Text  string  `json:"text"`
	Size  float64 `json:"size"`
	Font  string  `json:"font"`
	Flags int     `json:"flags"`
	Color int     `json:"color"`
	BBox  Rect    `json:"bbox"`
}

// Line is one visual row of spans sharing a baseline, as produced by the
// page parser before any merging or filtering.
type Line struct {
	BBox  Rect   `json:"bbox"`
	Spans []Span `json:"spans"`
}

// Page holds every primitive the engine consumes for a single page.
type Page struct {
	Number   int       `json:"number"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Lines    []Line    `json:"lines"`
	Drawings []Drawing `json:"drawings"`
}

// Rectangles returns the page's rectangle drawings in document order.
func (p Page) Rectangles() []Rect {
	var out []Rect
	for _, d := range p.Drawings {
		if d.Kind == KindRectangle {
			out = append(out, d.Rect)
		}
	}
	return out
}

// Images returns the page's image drawings in document order.
func (p Page) Images() []Rect {
	var out []Rect
	for _, d := range p.Drawings {
		if d.Kind == KindImage {
			out = append(out, d.Rect)
		}
	}
	return out
}

// Document is the top-level page-primitives dump: what the mutool producer
// emits and what a pre-extracted *.json input contains.
type Document struct {
	Pages []Page `json:"pages"`
}

// Decode reads a page-primitives dump from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode page dump: %w", err)
	}
	for i := range doc.Pages {
		if doc.Pages[i].Number == 0 {
			doc.Pages[i].Number = i + 1
		}
	}
	return doc, nil
}

// Encode writes the dump as JSON to w.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(d)
}
