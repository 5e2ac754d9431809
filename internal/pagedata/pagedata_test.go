package pagedata

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectIntersects(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}

	assert.True(t, a.Intersects(Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}))
	assert.True(t, a.Intersects(Rect{X0: 2, Y0: 2, X1: 8, Y1: 8}), "containment counts")

	// Shared edges are not overlap.
	assert.False(t, a.Intersects(Rect{X0: 10, Y0: 0, X1: 20, Y1: 10}))
	assert.False(t, a.Intersects(Rect{X0: 0, Y0: 10, X1: 10, Y1: 20}))
	assert.False(t, a.Intersects(Rect{X0: 11, Y0: 11, X1: 20, Y1: 20}))
}

func TestRectExpand(t *testing.T) {
	r := Rect{X0: 10, Y0: 20, X1: 30, Y1: 40}
	e := r.Expand(5)
	assert.Equal(t, Rect{X0: 5, Y0: 15, X1: 35, Y1: 45}, e)
	assert.Equal(t, Rect{X0: 10, Y0: 20, X1: 30, Y1: 40}, r, "receiver unchanged")

	assert.Equal(t, 20.0, r.Width())
	assert.Equal(t, 20.0, r.Height())
}

func TestPageDrawingBuckets(t *testing.T) {
	p := Page{
		Drawings: []Drawing{
			{Kind: KindRectangle, Rect: Rect{X1: 1, Y1: 1}},
			{Kind: KindImage, Rect: Rect{X1: 2, Y1: 2}},
			{Kind: KindRectangle, Rect: Rect{X1: 3, Y1: 3}},
		},
	}
	assert.Len(t, p.Rectangles(), 2)
	assert.Len(t, p.Images(), 1)
}

func TestDecodeFillsPageNumbers(t *testing.T) {
	in := `{"pages":[
		{"width":612,"height":792,"lines":[
			{"bbox":{"x0":72,"y0":70,"x1":300,"y1":90},
			 "spans":[{"text":"Hello","size":18,"font":"Helvetica-Bold","flags":2,"color":0,
			           "bbox":{"x0":72,"y0":70,"x1":300,"y1":90}}]}
		]},
		{"number":7,"width":612,"height":792}
	]}`
	doc, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number, "missing numbers default to position")
	assert.Equal(t, 7, doc.Pages[1].Number, "explicit numbers survive")

	require.Len(t, doc.Pages[0].Lines, 1)
	sp := doc.Pages[0].Lines[0].Spans[0]
	assert.Equal(t, "Hello", sp.Text)
	assert.Equal(t, 18.0, sp.Size)
	assert.NotZero(t, sp.Flags&FlagBold)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	doc := Document{Pages: []Page{{
		Number: 1, Width: 612, Height: 792,
		Lines: []Line{{
			BBox:  Rect{X0: 72, Y0: 70, X1: 300, Y1: 90},
			Spans: []Span{{Text: "Hi", Size: 12, Font: "Times-Roman"}},
		}},
		Drawings: []Drawing{{Kind: KindImage, Rect: Rect{X0: 0, Y0: 100, X1: 200, Y1: 300}}},
	}}}

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))

	back, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}
