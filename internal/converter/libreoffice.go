// Package converter turns Office documents into PDFs via headless
// LibreOffice, so the outline pipeline only ever parses one format.
package converter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 3 * time.Minute

// LibreOffice shells out to the soffice binary for conversions. Each call
// uses a throwaway profile directory, so concurrent conversions do not fight
// over the shared user profile lock.
type LibreOffice struct {
	binPath string
	timeout time.Duration
}

// New locates the LibreOffice binary on PATH.
func New(timeout time.Duration) (*LibreOffice, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return &LibreOffice{binPath: path, timeout: timeout}, nil
		}
	}
	return nil, fmt.Errorf("libreoffice not found on PATH")
}

// Available reports whether a LibreOffice binary can be invoked.
func Available() bool {
	for _, name := range []string{"soffice", "libreoffice"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// ConvertToPDF converts inputPath into a PDF inside outputDir and returns the
// output path. LibreOffice names the file after the input's base name.
func (l *LibreOffice) ConvertToPDF(ctx context.Context, inputPath, outputDir string) (string, error) {
	start := time.Now()

	if err := validateInput(inputPath); err != nil {
		return "", err
	}
	if protected := l.looksPasswordProtected(ctx, inputPath); protected {
		return "", fmt.Errorf("document is password protected")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	profileDir := filepath.Join(os.TempDir(), "lo_profile_"+uuid.New().String())
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return "", fmt.Errorf("create profile directory: %w", err)
	}
	defer os.RemoveAll(profileDir)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.binPath,
		fmt.Sprintf("-env:UserInstallation=file://%s", profileDir),
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outputDir,
		inputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("conversion timed out after %v", l.timeout)
		}
		return "", fmt.Errorf("conversion failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	outPath := expectedOutputPath(inputPath, outputDir)
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("conversion produced no output: %w", err)
	}

	log.Info().
		Str("input", inputPath).
		Str("output", outPath).
		Dur("duration", time.Since(start)).
		Msg("converted document to PDF")

	return outPath, nil
}

func validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input %s is empty", path)
	}
	return nil
}

// looksPasswordProtected runs a cheap --cat probe; LibreOffice mentions the
// password in its error output for encrypted documents.
func (l *LibreOffice) looksPasswordProtected(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.binPath, "--headless", "--cat", path)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return false
	}
	msg := strings.ToLower(string(out))
	return strings.Contains(msg, "password") ||
		strings.Contains(msg, "encrypted") ||
		strings.Contains(msg, "protected")
}

func expectedOutputPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+".pdf")
}

var supportedExtensions = []string{
	"doc", "docx", "rtf", "odt",
	"xls", "xlsx", "ods", "csv",
	"ppt", "pptx", "odp",
	"txt", "html", "htm",
}

// IsSupported checks whether a file extension is convertible.
func IsSupported(extension string) bool {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
