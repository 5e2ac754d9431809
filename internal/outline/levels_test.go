package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(level Level, text string, page int, size float64) candidate {
	return candidate{Entry: Entry{Level: level, Text: text, Page: page}, size: size, hasSize: true}
}

func TestRankLevel(t *testing.T) {
	want := []Level{LevelH1, LevelH2, LevelH3, LevelH4, LevelH6, LevelH6, LevelH6}
	for rank, lvl := range want {
		assert.Equal(t, lvl, rankLevel(rank), "rank %d", rank)
	}
}

func TestFinalizeDropsForbiddenTexts(t *testing.T) {
	cands := []candidate{
		sized(LevelH1, "NAME:", 1, 14),
		sized(LevelH1, "1. Overview", 1, 14),
		sized(LevelH1, "SIGNATURE:", 3, 14),
	}
	got := finalize(cands, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "1. Overview", got[0].Text)
}

func TestFinalizeRemapsDistinctSizes(t *testing.T) {
	cands := []candidate{
		sized(LevelH1, "Top", 1, 18),
		sized(LevelH2, "Mid", 2, 14),
		sized(LevelH3, "Low", 2, 11),
		sized(LevelH3, "Lower", 3, 10),
		sized(LevelH3, "Lowest", 3, 9),
		sized(LevelH1, "Top again", 4, 18),
	}
	got := finalize(cands, nil)
	require.Len(t, got, 6)
	assert.Equal(t, LevelH1, got[0].Level)
	assert.Equal(t, LevelH2, got[1].Level)
	assert.Equal(t, LevelH3, got[2].Level)
	assert.Equal(t, LevelH4, got[3].Level)
	assert.Equal(t, LevelH6, got[4].Level)
	assert.Equal(t, LevelH1, got[5].Level, "equal sizes map to equal levels")
}

func TestFinalizeInsertsMissingColoredCandidates(t *testing.T) {
	cands := []candidate{
		sized(LevelH1, "1. Scope", 2, 14),
	}
	colored := []TextLine{
		{Text: "COVER TITLE", Size: 22, Colored: true, Page: 1, AboveRect: -1},
	}
	got := finalize(cands, colored)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{Level: LevelH1, Text: "COVER TITLE", Page: 1}, got[0])
	assert.Equal(t, "1. Scope", got[1].Text)
	assert.Equal(t, LevelH1, got[1].Level, "sole distinct size keeps the top level")
}

func TestFinalizeColoredInsertionDeduplicates(t *testing.T) {
	colored := []TextLine{
		{Text: "COVER TITLE", Colored: true, Page: 1, AboveRect: -1},
		{Text: "COVER TITLE", Colored: true, Page: 1, AboveRect: -1},
	}
	got := finalize(nil, colored)
	require.Len(t, got, 1)
	assert.Equal(t, "COVER TITLE", got[0].Text)
}

func TestFinalizeColoredAlreadyPresentNotInserted(t *testing.T) {
	cands := []candidate{
		sized(LevelH1, "COVER TITLE", 1, 22),
	}
	colored := []TextLine{
		{Text: "COVER TITLE", Colored: true, Page: 1, AboveRect: -1},
	}
	got := finalize(cands, colored)
	require.Len(t, got, 1)
	assert.Equal(t, "COVER TITLE", got[0].Text)
}

func TestFinalizeEmptyInput(t *testing.T) {
	assert.Empty(t, finalize(nil, nil))
}
