// Package server exposes the outline pipeline over HTTP: a synchronous
// extraction endpoint, an async job API backed by the Redis queue, page
// previews and operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/batch"
	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/docsource"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/mupdf"
	"github.com/local/outliner/internal/queue"
	"github.com/local/outliner/internal/statuscheck"
	"github.com/local/outliner/internal/store"
)

// Server holds the handler dependencies. Queue and status store are optional;
// without them the async job endpoints answer 503.
type Server struct {
	cfg   config.Config
	pipe  *batch.Pipeline
	q     *queue.RedisQueue
	st    *store.RedisStatus
	check *statuscheck.Checker

	httpSrv *http.Server
}

// New builds a Server around the pipeline.
func New(cfg config.Config, pipe *batch.Pipeline, q *queue.RedisQueue, st *store.RedisStatus, check *statuscheck.Checker) *Server {
	return &Server{cfg: cfg, pipe: pipe, q: q, st: st, check: check}
}

// RegisterRoutes attaches all handlers to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/outline", s.handleOutline)
	mux.HandleFunc("/api/jobs", s.handleCreateJob)
	mux.HandleFunc("/api/jobs/", s.handleGetJob)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", metrics.Handler())
}

// Start runs the HTTP server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("port", s.cfg.Server.Port).Msg("http server listening")
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

type outlineRequest struct {
	Ref string `json:"ref"`
}

// handleOutline runs the pipeline synchronously and returns the outline
// document. Intended for small documents; large ones should use the job API.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ref == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty ref")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Worker.JobTimeout)
	defer cancel()

	doc, err := s.pipe.Process(ctx, req.Ref)
	if err != nil {
		switch {
		case errors.Is(err, batch.ErrNoText):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "extraction timed out")
		case strings.Contains(err.Error(), "unsupported"):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			log.Error().Err(err).Str("ref", req.Ref).Msg("sync outline failed")
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleCreateJob enqueues an async outline job and returns its id.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.q == nil || s.st == nil {
		writeError(w, http.StatusServiceUnavailable, "job queue not configured")
		return
	}
	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ref == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty ref")
		return
	}

	job := batch.Job{ID: uuid.NewString(), Ref: req.Ref}
	payload, err := json.Marshal(job)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.st.Set(r.Context(), job.ID, store.Status{State: store.StateQueued, Ref: req.Ref}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.q.Enqueue(r.Context(), payload); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Info().Str("job_id", job.ID).Str("ref", req.Ref).Msg("job enqueued")
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

type jobResponse struct {
	JobID string `json:"job_id"`
	store.Status
	Result json.RawMessage `json:"result,omitempty"`
}

// handleGetJob returns the status of one job, with the outline inlined once
// the job has completed.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.st == nil {
		writeError(w, http.StatusServiceUnavailable, "job store not configured")
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	st, ok, err := s.st.Get(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	resp := jobResponse{JobID: jobID, Status: st}
	if st.State == store.StateCompleted {
		if data, found, rerr := s.st.GetResult(r.Context(), jobID); rerr == nil && found {
			resp.Result = data
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreview renders a single PDF page as JPEG. Query params: ref, page
// (1-based, default 1).
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "ref query parameter is required")
		return
	}
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	src, err := s.pipe.Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer src.Close()
	if src.Kind != docsource.KindPDF {
		writeError(w, http.StatusUnsupportedMediaType, "preview requires a PDF source")
		return
	}

	img, width, height, err := mupdf.RenderPageJPEG(src.Path, page, s.cfg.Preview.DPI, s.cfg.Preview.Quality, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Image-Width", strconv.Itoa(width))
	w.Header().Set("X-Image-Height", strconv.Itoa(height))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// handleStatus reports the readiness of external dependencies.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.check.Summary(r.Context()))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
