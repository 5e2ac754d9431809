package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// IngestConfig defines where batch mode reads documents and writes results.
type IngestConfig struct {
	InputDir  string
	OutputDir string
}

// ProbeConfig tunes the extractable-text gate.
type ProbeConfig struct {
	CharThreshold int
}

// WorkerConfig defines worker-pool behavior and limits.
type WorkerConfig struct {
	Concurrency int
	JobTimeout  time.Duration
}

// QueueConfig defines queue connectivity and names.
type QueueConfig struct {
	RedisURL     string
	Stream       string
	Group        string
	Consumer     string
	PollInterval time.Duration
	MaxAttempts  int
}

// StorageConfig defines the optional S3 result store.
type StorageConfig struct {
	S3Bucket     string
	ResultPrefix string
	Password     string
}

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// PreviewConfig tunes page preview rendering.
type PreviewConfig struct {
	DPI     int
	Quality int
}

// ConvertConfig tunes the LibreOffice conversion step.
type ConvertConfig struct {
	Timeout time.Duration
}

// Config is the top-level configuration.
type Config struct {
	Logging LoggingConfig
	Axiom   AxiomConfig
	Ingest  IngestConfig
	Probe   ProbeConfig
	Worker  WorkerConfig
	Queue   QueueConfig
	Storage StorageConfig
	Server  ServerConfig
	Preview PreviewConfig
	Convert ConvertConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/outliner.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_outliner",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Ingest = IngestConfig{
		InputDir:  getEnv("INPUT_DIR", "input"),
		OutputDir: getEnv("RESULT_DIR", "output"),
	}

	cfg.Probe = ProbeConfig{
		CharThreshold: parseInt(getEnv("PROBE_CHAR_THRESHOLD", "300"), 300),
	}

	cfg.Worker = WorkerConfig{
		Concurrency: parseInt(getEnv("WORKER_CONCURRENCY", "4"), 4),
		JobTimeout:  parseDuration(getEnv("JOB_TIMEOUT", "5m"), 5*time.Minute),
	}

	cfg.Queue = QueueConfig{
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		Stream:       getEnv("QUEUE_STREAM", "jobs:outline"),
		Group:        getEnv("QUEUE_GROUP", "workers:outline"),
		Consumer:     getEnv("QUEUE_CONSUMER", defaultConsumer()),
		PollInterval: parseDuration(getEnv("QUEUE_POLL_INTERVAL", "100ms"), 100*time.Millisecond),
		MaxAttempts:  parseInt(getEnv("JOB_MAX_ATTEMPTS", "3"), 3),
	}

	cfg.Storage = StorageConfig{
		S3Bucket:     getEnv("S3_BUCKET", ""),
		ResultPrefix: getEnv("S3_RESULT_PREFIX", "outlines/"),
		Password:     getEnv("STORAGE_PASSWORD", ""),
	}

	cfg.Server = ServerConfig{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "15s"), 15*time.Second),
	}

	cfg.Preview = PreviewConfig{
		DPI:     parseInt(getEnv("PREVIEW_DPI", "96"), 96),
		Quality: parseInt(getEnv("PREVIEW_QUALITY", "80"), 80),
	}

	cfg.Convert = ConvertConfig{
		Timeout: parseDuration(getEnv("CONVERT_TIMEOUT", "3m"), 3*time.Minute),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}

func defaultConsumer() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "outliner-1"
	}
	return host
}
