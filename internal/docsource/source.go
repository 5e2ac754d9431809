// Package docsource resolves a document reference into a local file the
// pipeline can read, and classifies it by magic bytes. References may be
// plain paths, file://, http(s):// or s3:// URLs; remote documents are
// downloaded to temp files owned by the returned Source.
package docsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/mupdf"
	"github.com/local/outliner/internal/storage"
)

// Kind is the coarse document class the pipeline routes on.
type Kind int

const (
	KindUnsupported Kind = iota
	// KindPDF goes straight to the primitive dump.
	KindPDF
	// KindPageDump is a pre-extracted primitive JSON document.
	KindPageDump
	// KindOffice needs a LibreOffice conversion to PDF first.
	KindOffice
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindPageDump:
		return "pagedump"
	case KindOffice:
		return "office"
	default:
		return "unsupported"
	}
}

// Source is a resolved, locally readable document.
type Source struct {
	Ref  string
	Path string
	Kind Kind
	MIME string

	temps []string
}

// AddTemp registers a temp file for removal on Close.
func (s *Source) AddTemp(path string) {
	s.temps = append(s.temps, path)
}

// Close removes any temp files created during resolution.
func (s *Source) Close() error {
	var firstErr error
	for _, t := range s.temps {
		if err := os.Remove(t); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	s.temps = nil
	return firstErr
}

// ObjectFetcher fetches an S3 object, opening its password envelope when one
// is present. *storage.S3Client implements it.
type ObjectFetcher interface {
	Download(ctx context.Context, bucket, key, password string) ([]byte, *storage.ObjectMeta, error)
}

// Resolver resolves document refs. The optional S3 fetcher and password let
// encrypted s3:// inputs be opened before type detection; a nil fetcher
// builds a client from the default AWS config chain on first use.
type Resolver struct {
	S3       ObjectFetcher
	Password string
}

// Resolve fetches ref to a local path and classifies it, with no S3
// credentials or password attached.
func Resolve(ctx context.Context, ref string) (*Source, error) {
	return Resolver{}.Resolve(ctx, ref)
}

// Resolve fetches ref to a local path and classifies it.
func (r Resolver) Resolve(ctx context.Context, ref string) (*Source, error) {
	// Strip an optional #page fragment.
	clean := ref
	if i := strings.Index(clean, "#"); i >= 0 {
		clean = clean[:i]
	}

	src := &Source{Ref: ref}

	var err error
	switch {
	case strings.HasPrefix(clean, "s3://"):
		src.Path, err = r.downloadS3(ctx, clean)
		if err == nil {
			src.AddTemp(src.Path)
		}
	case strings.HasPrefix(clean, "http://") || strings.HasPrefix(clean, "https://"):
		src.Path, err = downloadHTTP(ctx, clean)
		if err == nil {
			src.AddTemp(src.Path)
		}
	case strings.HasPrefix(clean, "file://"):
		src.Path = strings.TrimPrefix(clean, "file://")
	default:
		src.Path = clean
	}
	if err != nil {
		return nil, err
	}

	src.Kind, src.MIME, err = detect(src.Path)
	if err != nil {
		src.Close()
		return nil, err
	}

	log.Debug().
		Str("ref", ref).
		Str("path", src.Path).
		Str("kind", src.Kind.String()).
		Str("mime", src.MIME).
		Msg("resolved document source")

	return src, nil
}

// officeMIMEs are the convertible document types, after the zip/ole
// extension overrides below.
var officeMIMEs = map[string]struct{}{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/vnd.oasis.opendocument.text":                                   {},
	"application/vnd.oasis.opendocument.spreadsheet":                            {},
	"application/vnd.oasis.opendocument.presentation":                           {},
	"application/msword":            {},
	"application/vnd.ms-excel":      {},
	"application/vnd.ms-powerpoint": {},
	"application/rtf":               {},
}

// zipOverrides maps extensions of zip-container Office formats to their real
// MIME type; mimetype reports the container for some of these.
var zipOverrides = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".odp":  "application/vnd.oasis.opendocument.presentation",
}

// oleOverrides does the same for legacy OLE-container formats.
var oleOverrides = map[string]string{
	".doc": "application/msword",
	".xls": "application/vnd.ms-excel",
	".ppt": "application/vnd.ms-powerpoint",
}

func detect(path string) (Kind, string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return KindUnsupported, "", fmt.Errorf("detect file type: %w", err)
	}
	mime := mtype.String()
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case mime == "application/zip" || strings.Contains(mime, "application/x-zip"):
		if override, ok := zipOverrides[ext]; ok {
			mime = override
		}
	case mime == "application/x-ole-storage" || mime == "application/x-cfb":
		if override, ok := oleOverrides[ext]; ok {
			mime = override
		}
	}

	switch {
	case mime == "application/pdf":
		return KindPDF, mime, nil
	case mime == "application/json" || (strings.HasPrefix(mime, "text/plain") && ext == ".json"):
		if !looksLikePageDump(path) {
			return KindUnsupported, mime, fmt.Errorf("json file %s is not a page dump", path)
		}
		return KindPageDump, mime, nil
	default:
		if _, ok := officeMIMEs[mime]; ok {
			return KindOffice, mime, nil
		}
		return KindUnsupported, mime, fmt.Errorf("unsupported file type %s", mime)
	}
}

// looksLikePageDump checks for the top-level "pages" key without decoding
// the whole document.
func looksLikePageDump(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var head struct {
		Pages json.RawMessage `json:"pages"`
	}
	if err := json.NewDecoder(f).Decode(&head); err != nil {
		return false
	}
	return len(head.Pages) > 0
}

// ValidatePDF checks that both pdfcpu and go-fitz can read the document and
// agree on the page count. Returns the pdfcpu count.
func ValidatePDF(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf validation failed: %w", err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}

	fn, err := mupdf.FitzPageCount(path)
	if err != nil {
		return 0, fmt.Errorf("pdf not renderable: %w", err)
	}
	if fn != n {
		log.Warn().
			Str("path", path).
			Int("pdfcpu_pages", n).
			Int("fitz_pages", fn).
			Msg("page count mismatch between parsers")
	}
	return n, nil
}

func downloadHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d fetching %s", resp.StatusCode, url)
	}
	return spool(resp.Body, filepath.Ext(url))
}

func (r Resolver) downloadS3(ctx context.Context, s3url string) (string, error) {
	rest := strings.TrimPrefix(s3url, "s3://")
	slash := strings.Index(rest, "/")
	if slash <= 0 || slash == len(rest)-1 {
		return "", fmt.Errorf("invalid s3 url: %s", s3url)
	}
	bucket, key := rest[:slash], rest[slash+1:]

	fetcher := r.S3
	if fetcher == nil {
		cli, err := storage.NewS3Client(ctx, bucket)
		if err != nil {
			return "", err
		}
		fetcher = cli
	}

	data, _, err := fetcher.Download(ctx, bucket, key, r.Password)
	if err != nil {
		return "", fmt.Errorf("s3 get %s: %w", s3url, err)
	}

	path, err := spool(bytes.NewReader(data), filepath.Ext(key))
	if err != nil {
		return "", err
	}
	log.Info().Str("bucket", bucket).Str("key", key).Msg("downloaded s3 document to temp")
	return path, nil
}

func spool(r io.Reader, ext string) (string, error) {
	if ext == "" {
		ext = ".bin"
	}
	f, err := os.CreateTemp("", "docsource-*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
