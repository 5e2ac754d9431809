package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// inputExtensions are the file types picked up by the directory scan.
var inputExtensions = map[string]struct{}{
	".pdf":  {},
	".json": {},
	".doc":  {},
	".docx": {},
	".odt":  {},
	".rtf":  {},
	".ppt":  {},
	".pptx": {},
	".odp":  {},
	".xls":  {},
	".xlsx": {},
	".ods":  {},
}

// Run processes every document in the input directory through the pipeline
// with a bounded worker pool. One document failing never stops the batch;
// the first scan error is returned after all workers finish.
func (p *Pipeline) Run(ctx context.Context) error {
	paths, err := scanInputDir(p.cfg.Ingest.InputDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warn().Str("dir", p.cfg.Ingest.InputDir).Msg("no input documents found")
		return nil
	}

	log.Info().
		Int("documents", len(paths)).
		Int("workers", p.cfg.Worker.Concurrency).
		Msg("batch run starting")

	jobs := make(chan string)
	var wg sync.WaitGroup

	workers := p.cfg.Worker.Concurrency
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for path := range jobs {
				p.runOne(ctx, id, path)
			}
		}(i)
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	log.Info().Int("documents", len(paths)).Msg("batch run finished")
	return nil
}

func (p *Pipeline) runOne(ctx context.Context, worker int, path string) {
	jobCtx, cancel := context.WithTimeout(ctx, p.cfg.Worker.JobTimeout)
	defer cancel()

	out, err := p.ProcessAndSave(jobCtx, path)
	if err != nil {
		log.Error().Err(err).Int("worker", worker).Str("path", path).Msg("document failed")
		return
	}
	log.Info().Int("worker", worker).Str("path", path).Str("result", out).Msg("document processed")
}

func scanInputDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := inputExtensions[ext]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
