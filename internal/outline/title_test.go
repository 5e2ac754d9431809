package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boldAt(text string, size, y0 float64) TextLine {
	return TextLine{Text: text, Size: size, Fonts: []string{"Helvetica-Bold"}, Y0: y0, AboveRect: -1}
}

func plainAt(text string, size, y0 float64) TextLine {
	return TextLine{Text: text, Size: size, Fonts: []string{"Helvetica"}, Y0: y0, AboveRect: -1}
}

func TestDetectTitleMergesCloseBoldLines(t *testing.T) {
	lines := []TextLine{
		boldAt("Annual", 20, 50),
		boldAt("Report 2025", 18, 120),
		plainAt("Body text below the cover lines.", 10, 300),
	}
	title, size := detectTitle(lines, 792)
	assert.Equal(t, "Annual Report 2025", title)
	assert.Equal(t, 20.0, size)
}

func TestDetectTitleKeepsTopmostWhenFarApart(t *testing.T) {
	lines := []TextLine{
		boldAt("Annual Report", 20, 50),
		boldAt("Confidential", 12, 160),
	}
	title, size := detectTitle(lines, 792)
	assert.Equal(t, "Annual Report", title)
	assert.Equal(t, 20.0, size)
}

func TestDetectTitleIgnoresBottomHalf(t *testing.T) {
	lines := []TextLine{
		plainAt("Plain top text", 10, 50),
		boldAt("Footer Heading", 14, 500),
	}
	title, _ := detectTitle(lines, 792)
	assert.Equal(t, "", title)
}

func TestDetectTitleRejectsUnacceptableText(t *testing.T) {
	cases := []string{
		"NAME:",
		"SIGNATURE:",
		"123 Main Street",
		"Scope, Schedule and Budget",
		"Well-Known Protocols",
	}
	for _, txt := range cases {
		title, _ := detectTitle([]TextLine{boldAt(txt, 18, 60)}, 792)
		assert.Equal(t, "", title, "%q must not become a title", txt)
	}
}

func TestDetectTitleEmptyInput(t *testing.T) {
	title, size := detectTitle(nil, 792)
	assert.Equal(t, "", title)
	assert.Equal(t, 0.0, size)
}

func TestColoredTitleCandidates(t *testing.T) {
	top := plainAt("MONTHLY DIGEST", 22, 40)
	top.Colored = true
	near := plainAt("Special Edition", 14, 40.5)
	near.Colored = true
	far := plainAt("Also colored but lower", 12, 60)
	far.Colored = true
	uncolored := plainAt("Black ink at the top", 12, 40)

	got := coloredTitleCandidates([]TextLine{top, near, far, uncolored})
	require.Len(t, got, 2)
	assert.Equal(t, "MONTHLY DIGEST", got[0].Text)
	assert.Equal(t, "Special Edition", got[1].Text)

	assert.Nil(t, coloredTitleCandidates(nil))
}
