package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/outliner/internal/outline"
)

func TestBaseName(t *testing.T) {
	assert.Equal(t, "report", BaseName("/data/in/report.pdf"))
	assert.Equal(t, "report", BaseName("s3://bucket/folder/report.docx"))
	assert.Equal(t, "report", BaseName("https://example.com/report.pdf#page=2"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
	assert.Equal(t, "document", BaseName(""))
}

func TestSaveWritesNamedJSON(t *testing.T) {
	dir := t.TempDir()
	doc := New("/in/handbook.pdf", 12, outline.Result{
		Title: "Handbook",
		Outline: []outline.Entry{
			{Level: outline.LevelH1, Text: "1. Policies", Page: 2},
		},
	})

	path, err := Save(dir, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "handbook.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Handbook", got.Title)
	assert.Equal(t, 12, got.Pages)
	require.Len(t, got.Outline, 1)
	assert.Equal(t, outline.LevelH1, got.Outline[0].Level)
	assert.False(t, got.GeneratedAt.IsZero())
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	_, err := Save(dir, New("doc.pdf", 1, outline.Result{Outline: []outline.Entry{}}))
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
