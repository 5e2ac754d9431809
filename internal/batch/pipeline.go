// Package batch runs documents through the outline pipeline, either by
// scanning an input directory or by consuming the Redis job queue.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/converter"
	"github.com/local/outliner/internal/docsource"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/mupdf"
	"github.com/local/outliner/internal/outline"
	"github.com/local/outliner/internal/pagedata"
	"github.com/local/outliner/internal/probe"
	"github.com/local/outliner/internal/results"
	"github.com/local/outliner/internal/storage"
)

// ErrNoText marks documents that fail the extractable-text probe.
var ErrNoText = errors.New("document has no extractable text")

// Pipeline turns one document reference into a persisted outline. The
// converter and S3 client are optional; a nil converter fails Office inputs,
// a nil S3 client skips the remote mirror.
type Pipeline struct {
	cfg    config.Config
	runner *mupdf.Runner
	conv   *converter.LibreOffice
	s3     *storage.S3Client
	res    docsource.Resolver
}

// NewPipeline wires the pipeline dependencies.
func NewPipeline(cfg config.Config, runner *mupdf.Runner, conv *converter.LibreOffice, s3 *storage.S3Client) *Pipeline {
	res := docsource.Resolver{Password: cfg.Storage.Password}
	if s3 != nil {
		res.S3 = s3
	}
	return &Pipeline{cfg: cfg, runner: runner, conv: conv, s3: s3, res: res}
}

// Resolve exposes the pipeline's source resolution, used by the preview
// endpoint.
func (p *Pipeline) Resolve(ctx context.Context, ref string) (*docsource.Source, error) {
	return p.res.Resolve(ctx, ref)
}

// Process resolves ref, extracts page primitives and runs the outline
// engine. It does not persist anything.
func (p *Pipeline) Process(ctx context.Context, ref string) (results.Document, error) {
	start := time.Now()

	doc, err := p.process(ctx, ref)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoText):
			metrics.IncProcessed("no_text")
		case errors.Is(err, context.DeadlineExceeded):
			metrics.IncProcessed("timeout")
		default:
			metrics.IncProcessed("error")
		}
		return results.Document{}, err
	}

	metrics.IncProcessed("success")
	metrics.ObserveStage("total", time.Since(start))
	for _, e := range doc.Outline {
		metrics.IncHeading(string(e.Level))
	}
	return doc, nil
}

func (p *Pipeline) process(ctx context.Context, ref string) (results.Document, error) {
	src, err := p.res.Resolve(ctx, ref)
	if err != nil {
		return results.Document{}, err
	}
	defer src.Close()

	if src.Kind == docsource.KindOffice {
		if p.conv == nil {
			return results.Document{}, fmt.Errorf("no converter available for %s", src.MIME)
		}
		convStart := time.Now()
		pdfPath, cerr := p.conv.ConvertToPDF(ctx, src.Path, os.TempDir())
		if cerr != nil {
			metrics.IncConversion("error")
			return results.Document{}, fmt.Errorf("convert %s: %w", ref, cerr)
		}
		metrics.IncConversion("success")
		metrics.ObserveStage("convert", time.Since(convStart))
		src.Path = pdfPath
		src.Kind = docsource.KindPDF
		src.AddTemp(pdfPath)
	}

	var pages pagedata.Document
	switch src.Kind {
	case docsource.KindPageDump:
		f, oerr := os.Open(src.Path)
		if oerr != nil {
			return results.Document{}, fmt.Errorf("open page dump: %w", oerr)
		}
		pages, err = pagedata.Decode(f)
		f.Close()
		if err != nil {
			return results.Document{}, fmt.Errorf("decode page dump %s: %w", ref, err)
		}

	case docsource.KindPDF:
		if _, verr := docsource.ValidatePDF(src.Path); verr != nil {
			return results.Document{}, verr
		}
		ok, report, perr := probe.HasText(src.Path, p.cfg.Probe.CharThreshold)
		if perr != nil {
			return results.Document{}, perr
		}
		if !ok {
			log.Info().
				Str("ref", ref).
				Int("chars", report.TotalChars).
				Int("threshold", report.Threshold).
				Msg("document failed text probe")
			return results.Document{}, fmt.Errorf("%s: %w", ref, ErrNoText)
		}

		if p.runner == nil {
			return results.Document{}, fmt.Errorf("mutool unavailable, cannot dump %s", ref)
		}
		dumpStart := time.Now()
		pages, err = p.runner.DumpPages(ctx, src.Path)
		if err != nil {
			return results.Document{}, err
		}
		metrics.ObserveStage("dump", time.Since(dumpStart))

	default:
		return results.Document{}, fmt.Errorf("unsupported source kind %s for %s", src.Kind, ref)
	}

	extractStart := time.Now()
	res := outline.Extract(pages.Pages)
	metrics.ObserveStage("extract", time.Since(extractStart))

	return results.New(ref, len(pages.Pages), res), nil
}

// ProcessAndSave runs Process, writes the local result file and mirrors it to
// S3 when a client is configured. Returns the local result path.
func (p *Pipeline) ProcessAndSave(ctx context.Context, ref string) (string, error) {
	doc, err := p.Process(ctx, ref)
	if err != nil {
		return "", err
	}

	path, err := results.Save(p.cfg.Ingest.OutputDir, doc)
	if err != nil {
		return "", err
	}

	if p.s3 != nil && p.cfg.Storage.S3Bucket != "" {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return path, fmt.Errorf("read result for upload: %w", rerr)
		}
		key := p.cfg.Storage.ResultPrefix + filepath.Base(path)
		meta := &storage.ObjectMeta{OriginalName: filepath.Base(path), ContentType: "application/json"}
		if uerr := p.s3.UploadResult(ctx, key, data, p.cfg.Storage.Password, meta); uerr != nil {
			// Local save succeeded; surface the mirror failure without
			// failing the job.
			log.Error().Err(uerr).Str("key", key).Msg("result mirror to s3 failed")
		}
	}

	return path, nil
}
