package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "input", cfg.Ingest.InputDir)
	assert.Equal(t, "output", cfg.Ingest.OutputDir)
	assert.Equal(t, 300, cfg.Probe.CharThreshold)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, "jobs:outline", cfg.Queue.Stream)
	assert.Equal(t, 3, cfg.Queue.MaxAttempts)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 96, cfg.Preview.DPI)
	assert.Equal(t, 3*time.Minute, cfg.Convert.Timeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WORKER_CONCURRENCY", "16")
	t.Setenv("JOB_TIMEOUT", "90s")
	t.Setenv("AXIOM_DATASET", "prod")
	t.Setenv("S3_BUCKET", "outlines-prod")

	cfg := FromEnv()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 16, cfg.Worker.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Worker.JobTimeout)
	assert.Equal(t, "prod_outliner", cfg.Axiom.Dataset)
	assert.Equal(t, "outlines-prod", cfg.Storage.S3Bucket)
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	t.Setenv("JOB_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Worker.JobTimeout)
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, parseBool(v), v)
	}
	for _, v := range []string{"", "0", "false", "off"} {
		assert.False(t, parseBool(v), v)
	}
}
