package probe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc struct {
	pages []string
	errAt map[int]error
}

func (d *fakeDoc) NumPage() int { return len(d.pages) }

func (d *fakeDoc) PageText(i int) (string, error) {
	if err, ok := d.errAt[i]; ok {
		return "", err
	}
	return d.pages[i], nil
}

func (d *fakeDoc) Close() error { return nil }

type fakeOpener struct {
	doc *fakeDoc
	err error
}

func (o fakeOpener) Open(string) (Doc, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

func TestHasTextAboveThreshold(t *testing.T) {
	doc := &fakeDoc{pages: []string{
		strings.Repeat("word ", 100),
		strings.Repeat("more ", 100),
	}}
	ok, report, err := hasText(fakeOpener{doc: doc}, "sample.pdf", 300)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, report.HasText)
	assert.GreaterOrEqual(t, report.TotalChars, 300)
}

func TestHasTextScannedDocument(t *testing.T) {
	doc := &fakeDoc{pages: []string{"", "  \n\t ", ""}}
	ok, report, err := hasText(fakeOpener{doc: doc}, "scan.pdf", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, report.TotalChars)
	assert.Equal(t, DefaultThreshold, report.Threshold)
}

func TestHasTextEmptyDocument(t *testing.T) {
	ok, report, err := hasText(fakeOpener{doc: &fakeDoc{}}, "empty.pdf", 10)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, report.TotalPages)
	assert.Empty(t, report.SampledPages)
}

func TestHasTextPageErrorsAreRecorded(t *testing.T) {
	doc := &fakeDoc{
		pages: []string{"short", "short"},
		errAt: map[int]error{1: errors.New("damaged page")},
	}
	ok, report, err := hasText(fakeOpener{doc: doc}, "damaged.pdf", 100)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, report.Samples, 2)
	assert.Equal(t, "damaged page", report.Samples[1].Err)
}

func TestHasTextOpenError(t *testing.T) {
	_, _, err := hasText(fakeOpener{err: errors.New("no such file")}, "missing.pdf", 10)
	assert.Error(t, err)
}

func TestSampleIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, sampleIndices(3))
	assert.Empty(t, sampleIndices(0))

	got := sampleIndices(100)
	require.Len(t, got, 5)
	assert.Contains(t, got, 0)
	assert.Contains(t, got, 50)
	assert.Contains(t, got, 99)
	assert.IsIncreasing(t, got)
}
