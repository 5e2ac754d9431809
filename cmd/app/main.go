package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/batch"
	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/converter"
	"github.com/local/outliner/internal/logger"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/mupdf"
	"github.com/local/outliner/internal/queue"
	"github.com/local/outliner/internal/server"
	"github.com/local/outliner/internal/statuscheck"
	"github.com/local/outliner/internal/storage"
	"github.com/local/outliner/internal/store"
)

func main() {
	mode := flag.String("mode", os.Getenv("MODE"), "run mode: batch (scan input dir) or serve (http api + queue worker)")
	flag.Parse()
	if *mode == "" {
		*mode = "batch"
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()

	_ = logger.Init(logger.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logger.Close()

	metrics.Init()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipe, s3 := buildPipeline(ctx, cfg)

	switch *mode {
	case "batch":
		if err := pipe.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("batch run failed")
		}

	case "serve":
		runServe(ctx, cfg, pipe, s3)

	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode, expected batch or serve")
	}
}

// buildPipeline wires the optional external tools. Missing mutool or
// LibreOffice narrows what the pipeline accepts instead of aborting startup.
func buildPipeline(ctx context.Context, cfg config.Config) (*batch.Pipeline, *storage.S3Client) {
	runner, err := mupdf.NewRunner()
	if err != nil {
		log.Warn().Err(err).Msg("mutool not found, pdf extraction disabled")
		runner = nil
	}

	conv, err := converter.New(cfg.Convert.Timeout)
	if err != nil {
		log.Warn().Err(err).Msg("libreoffice not found, office conversion disabled")
		conv = nil
	}

	var s3 *storage.S3Client
	if cfg.Storage.S3Bucket != "" {
		s3, err = storage.NewS3Client(ctx, cfg.Storage.S3Bucket)
		if err != nil {
			log.Warn().Err(err).Msg("s3 client init failed, result mirroring disabled")
			s3 = nil
		}
	}

	return batch.NewPipeline(cfg, runner, conv, s3), s3
}

func runServe(ctx context.Context, cfg config.Config, pipe *batch.Pipeline, s3 *storage.S3Client) {
	var (
		q  *queue.RedisQueue
		st *store.RedisStatus
		w  *batch.Worker
	)

	if cfg.Queue.RedisURL != "" {
		var err error
		q, err = queue.NewRedisQueue(cfg.Queue.RedisURL, cfg.Queue.Stream, cfg.Queue.Group)
		if err != nil {
			log.Fatal().Err(err).Msg("redis queue init failed")
		}
		defer q.Close()

		st, err = store.NewRedisStatus(cfg.Queue.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis status store init failed")
		}
		defer st.Close()

		w = batch.NewWorker(pipe, q, st)
		w.Start()
		defer w.Stop()
	} else {
		log.Warn().Msg("REDIS_URL not set, async job api disabled")
	}

	check := statuscheck.New(statuscheck.Options{
		Redis: redisPinger(q),
		S3:    s3Pinger(s3),
	})

	srv := server.New(cfg, pipe, q, st, check)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server error")
		}
		return
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	log.Info().Msg("shutdown complete")
}

// redisPinger avoids handing the checker a non-nil interface wrapping a nil
// pointer when the queue is not configured.
func redisPinger(q *queue.RedisQueue) statuscheck.RedisPinger {
	if q == nil {
		return nil
	}
	return q
}

func s3Pinger(s3 *storage.S3Client) statuscheck.S3Pinger {
	if s3 == nil {
		return nil
	}
	return s3
}
