package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/outliner/internal/pagedata"
)

// rawLine builds a one-span raw line at the given vertical position.
func rawLine(text string, size float64, font string, y float64) pagedata.Line {
	bbox := pagedata.Rect{X0: 72, Y0: y, X1: 400, Y1: y + size}
	return pagedata.Line{
		BBox: bbox,
		Spans: []pagedata.Span{
			{Text: text, Size: size, Font: font, BBox: bbox},
		},
	}
}

func coloredLine(text string, size float64, y float64, color int) pagedata.Line {
	ln := rawLine(text, size, "Helvetica", y)
	ln.Spans[0].Color = color
	return ln
}

func onePage(lines ...pagedata.Line) []pagedata.Page {
	return []pagedata.Page{{Number: 1, Width: 612, Height: 792, Lines: lines}}
}

func TestExtractEmptyDocument(t *testing.T) {
	res := Extract(nil)
	assert.Equal(t, "", res.Title)
	assert.Empty(t, res.Outline)

	res = Extract([]pagedata.Page{{Number: 1, Width: 612, Height: 792}})
	assert.Equal(t, "", res.Title)
	assert.Empty(t, res.Outline)
}

func TestExtractTitleExcludedFromOutline(t *testing.T) {
	pages := onePage(
		rawLine("Project Charter", 18, "Helvetica-Bold", 72),
		rawLine("This document outlines the scope of the work.", 10, "Helvetica", 120),
	)
	res := Extract(pages)
	assert.Equal(t, "Project Charter", res.Title)
	assert.Empty(t, res.Outline)
}

func TestExtractNumberedHeadingAccepted(t *testing.T) {
	pages := onePage(
		rawLine("1. Introduction", 14, "Helvetica", 72),
		rawLine("Body text explaining the chapter in detail here.", 10, "Helvetica", 100),
	)
	res := Extract(pages)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, "1. Introduction", res.Outline[0].Text)
	assert.Equal(t, LevelH1, res.Outline[0].Level)
	assert.Equal(t, 1, res.Outline[0].Page)
}

func TestExtractNumberedPrefixDigitGrouping(t *testing.T) {
	pages := onePage(
		rawLine("2.3.11. Details", 12, "Helvetica", 72),
		rawLine("Explanatory body content below the heading.", 10, "Helvetica", 100),
	)
	res := Extract(pages)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, "2.3.11. Details", res.Outline[0].Text)
}

func TestExtractColonHeadingLongWordBoundary(t *testing.T) {
	// 8 long words before the colon: rejected.
	rejected := onePage(
		rawLine("aaaaa bbbbb ccccc ddddd eeeee fffff ggggg hhhhh:", 12, "Helvetica", 72),
		rawLine("Body content under the rejected candidate line.", 10, "Helvetica", 100),
	)
	res := Extract(rejected)
	assert.Empty(t, res.Outline)

	// 6 long words, otherwise qualifying: accepted.
	accepted := onePage(
		rawLine("Aaaaa bbbbb ccccc ddddd eeeee fffff:", 12, "Helvetica", 72),
		rawLine("Body content under the accepted heading line.", 10, "Helvetica", 100),
	)
	res = Extract(accepted)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, "Aaaaa bbbbb ccccc ddddd eeeee fffff:", res.Outline[0].Text)
}

func TestExtractHeadingNeedsContentBelow(t *testing.T) {
	pages := onePage(
		rawLine("Some body paragraph sits before the candidate.", 10, "Helvetica", 60),
		rawLine("3. Conclusion", 14, "Helvetica", 700),
	)
	res := Extract(pages)
	assert.Empty(t, res.Outline, "a trailing line has no content below and is never a heading")
}

func TestExtractForbiddenTextsNeverInOutline(t *testing.T) {
	pages := onePage(
		rawLine("NAME:", 14, "Helvetica", 72),
		rawLine("John", 10, "Helvetica", 100),
		rawLine("DATE:", 14, "Helvetica", 130),
		rawLine("Some closing body content follows the form labels.", 10, "Helvetica", 160),
	)
	res := Extract(pages)
	assert.Equal(t, "", res.Title)
	for _, e := range res.Outline {
		assert.NotContains(t, []string{"ADDRESS:", "NAME:", "DATE:", "SIGNATURE:"}, e.Text)
	}
}

func TestExtractKeywordAlwaysHeading(t *testing.T) {
	pages := onePage(
		rawLine("Table of Contents", 11, "Helvetica", 72),
		rawLine("1. Introduction .......... 3", 10, "Helvetica", 100),
	)
	res := Extract(pages)
	require.NotEmpty(t, res.Outline)
	assert.Equal(t, "Table of Contents", res.Outline[0].Text)
}

func TestExtractColoredTitleFallback(t *testing.T) {
	pages := onePage(
		coloredLine("ANNUAL REPORT", 20, 50, 0xCC0000),
		rawLine("A year of steady progress across every region.", 10, "Helvetica", 120),
	)
	res := Extract(pages)
	assert.Equal(t, "", res.Title, "no bold line means no title")
	require.NotEmpty(t, res.Outline)
	assert.Equal(t, Entry{Level: LevelH1, Text: "ANNUAL REPORT", Page: 1}, res.Outline[0])
}

func TestExtractRankMappingSkipsH5(t *testing.T) {
	var lines []pagedata.Line
	y := 60.0
	sizes := []float64{20, 16, 14, 12, 11, 10.5}
	labels := []string{"1. Alpha", "2. Beta", "3. Gamma", "4. Delta", "5. Epsilon", "6. Zeta"}
	for i, sz := range sizes {
		lines = append(lines, rawLine(labels[i], sz, "Helvetica", y))
		y += 40
		lines = append(lines, rawLine("Filler body paragraph with enough words inside.", 9, "Helvetica", y))
		y += 40
	}
	res := Extract(onePage(lines...))
	require.Len(t, res.Outline, 6)

	want := []Level{LevelH1, LevelH2, LevelH3, LevelH4, LevelH6, LevelH6}
	for i, e := range res.Outline {
		assert.Equal(t, want[i], e.Level, "entry %d (%s)", i, e.Text)
	}

	// Monotonicity: larger size never maps to a deeper level.
	order := map[Level]int{LevelH1: 0, LevelH2: 1, LevelH3: 2, LevelH4: 3, LevelH6: 4}
	for i := 1; i < len(res.Outline); i++ {
		assert.LessOrEqual(t, order[res.Outline[i-1].Level], order[res.Outline[i].Level])
	}
}

func TestExtractDeterministic(t *testing.T) {
	pages := onePage(
		rawLine("Quarterly Review", 18, "Helvetica-Bold", 60),
		rawLine("1. Results", 14, "Helvetica", 120),
		rawLine("Revenue grew across all segments this quarter alone.", 10, "Helvetica", 150),
		rawLine("2. Outlook", 14, "Helvetica", 200),
		rawLine("Guidance for the next quarter remains unchanged here.", 10, "Helvetica", 230),
	)
	a := Extract(pages)
	b := Extract(pages)
	assert.Equal(t, a, b)
}

func TestExtractTitleOnPageOneOnlyExcluded(t *testing.T) {
	pages := []pagedata.Page{
		{Number: 1, Width: 612, Height: 792, Lines: []pagedata.Line{
			rawLine("Handbook", 18, "Helvetica-Bold", 60),
			rawLine("Welcome text introducing the handbook contents here.", 10, "Helvetica", 120),
		}},
		{Number: 2, Width: 612, Height: 792, Lines: []pagedata.Line{
			rawLine("1. Policies", 14, "Helvetica", 60),
			rawLine("Policy body text with several sentences of detail.", 10, "Helvetica", 100),
		}},
	}
	res := Extract(pages)
	assert.Equal(t, "Handbook", res.Title)
	for _, e := range res.Outline {
		if e.Page == 1 {
			assert.NotEqual(t, "Handbook", e.Text)
		}
	}
	require.NotEmpty(t, res.Outline)
	assert.Equal(t, "1. Policies", res.Outline[0].Text)
	assert.Equal(t, 2, res.Outline[0].Page)
}
