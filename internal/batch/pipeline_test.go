package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/outline"
	"github.com/local/outliner/internal/results"
)

const sampleDump = `{"pages":[{"number":1,"width":612,"height":792,"lines":[
	{"bbox":{"x0":72,"y0":72,"x1":300,"y1":86},
	 "spans":[{"text":"1. Introduction","size":14,"font":"Helvetica","flags":0,"color":0,
	           "bbox":{"x0":72,"y0":72,"x1":300,"y1":86}}]},
	{"bbox":{"x0":72,"y0":100,"x1":400,"y1":110},
	 "spans":[{"text":"Body text explaining the chapter in detail.","size":10,"font":"Helvetica","flags":0,"color":0,
	           "bbox":{"x0":72,"y0":100,"x1":400,"y1":110}}]}
]}]}`

func writeDump(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0644))
	return path
}

func testConfig(t *testing.T) config.Config {
	cfg := config.FromEnv()
	cfg.Ingest.OutputDir = t.TempDir()
	return cfg
}

func TestPipelineProcessPageDump(t *testing.T) {
	path := writeDump(t, t.TempDir())
	p := NewPipeline(testConfig(t), nil, nil, nil)

	doc, err := p.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, 1, doc.Pages)
	require.Len(t, doc.Outline, 1)
	assert.Equal(t, "1. Introduction", doc.Outline[0].Text)
	assert.Equal(t, outline.LevelH1, doc.Outline[0].Level)
}

func TestPipelineProcessAndSave(t *testing.T) {
	cfg := testConfig(t)
	path := writeDump(t, t.TempDir())
	p := NewPipeline(cfg, nil, nil, nil)

	out, err := p.ProcessAndSave(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Ingest.OutputDir, "sample.json"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc results.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Outline, 1)
}

func TestPipelineProcessUnsupportedInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.dat")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02}, 0644))

	p := NewPipeline(testConfig(t), nil, nil, nil)
	_, err := p.Process(context.Background(), path)
	assert.Error(t, err)
}
