// Package statuscheck aggregates readiness checks for the pipeline's
// external dependencies.
package statuscheck

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/local/outliner/internal/converter"
)

// RedisPinger models the minimal Redis capability needed for status checks.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// S3Pinger models the bucket reachability check. *storage.S3Client
// implements it.
type S3Pinger interface {
	Ping(ctx context.Context) error
}

// Checker aggregates health checks for the status endpoint.
type Checker struct {
	redis RedisPinger
	s3    S3Pinger
}

// Options configures the Checker. Nil fields mark the subsystem as not
// configured rather than failing.
type Options struct {
	Redis RedisPinger
	S3    S3Pinger
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Redis       Status `json:"redis"`
	S3          Status `json:"s3"`
	MuPDF       Status `json:"mupdf"`
	LibreOffice Status `json:"libreoffice"`
}

// New creates a Checker with the provided options.
func New(opts Options) *Checker {
	return &Checker{
		redis: opts.Redis,
		s3:    opts.S3,
	}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Redis:       c.checkRedis(ctx),
		S3:          c.checkS3(ctx),
		MuPDF:       checkBinary("mutool"),
		LibreOffice: checkLibreOffice(),
	}
}

func (c *Checker) checkRedis(ctx context.Context) Status {
	if c.redis == nil {
		return Status{OK: false, Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redis.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "connected"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
	if c.s3 == nil {
		return Status{OK: false, Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.s3.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "connected"}
}

func checkLibreOffice() Status {
	if converter.Available() {
		return Status{OK: true, Message: "available"}
	}
	return Status{OK: false, Message: "binary not found"}
}

func checkBinary(name string) Status {
	if _, err := exec.LookPath(name); err != nil {
		return Status{OK: false, Message: "binary not found"}
	}
	return Status{OK: true, Message: "available"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
