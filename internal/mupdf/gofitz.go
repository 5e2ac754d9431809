package mupdf

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// FitzPageCount returns the page count via go-fitz, used to cross-check the
// count reported by pdfcpu.
func FitzPageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// RenderPageJPEG renders one page (1-based) as an in-memory JPEG.
// Returns the encoded bytes plus pixel dimensions.
func RenderPageJPEG(path string, pageNum, dpi, quality int, grayscale bool) ([]byte, int, int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(pageNum-1, float64(dpi))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("render page %d: %w", pageNum, err)
	}

	bounds := img.Bounds()
	var final image.Image = img
	if grayscale {
		gray := image.NewGray(bounds)
		draw.Draw(gray, bounds, img, image.Point{}, draw.Src)
		final = gray
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, final, &jpeg.Options{Quality: quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode JPEG: %w", err)
	}

	log.Debug().
		Int("page", pageNum).
		Int("dpi", dpi).
		Int("bytes", buf.Len()).
		Msg("rendered page preview")

	return buf.Bytes(), bounds.Dx(), bounds.Dy(), nil
}
