// Package server exposes the player over HTTP and streams batch progress over
// WebSocket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/p-n-ai/pai-course/internal/batch"
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/export"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/player"
)

const maxBodyBytes = 1 << 20

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RunLog returns the recorded events of a batch run.
type RunLog interface {
	Run(ctx context.Context, runID string) ([]batch.Event, error)
}

// Server holds the HTTP handlers.
type Server struct {
	player *player.Player
	hub    *Hub
	health HealthChecker
	runs   RunLog
}

// Option configures a Server.
type Option func(*Server)

// WithRunLog serves recorded batch runs under /api/runs/{runID}.
func WithRunLog(runs RunLog) Option {
	return func(s *Server) { s.runs = runs }
}

// New creates a server for p. health may be nil, in which case /readyz always
// reports ready.
func New(p *player.Player, hub *Hub, health HealthChecker, opts ...Option) *Server {
	if hub == nil {
		hub = NewHub(0)
	}
	s := &Server{player: p, hub: hub, health: health}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/ws/progress", s.hub)

	r.Get("/api/credential", s.handleGetCredential)
	r.Put("/api/credential", s.handlePutCredential)
	r.Delete("/api/credential", s.handleDeleteCredential)

	r.Route("/api/course", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Get("/", s.handleSnapshot)
		r.Delete("/", s.handleReset)
		r.Post("/resume", s.handleResume)
		r.Post("/advance", s.handleAdvance)
		r.Post("/jump", s.handleJump)
		r.Post("/regenerate", s.handleRegenerate)
		r.Post("/quiz/select", s.handleSelect)
		r.Post("/quiz/submit", s.handleSubmit)
		r.Post("/quiz/retake", s.handleRetake)
		r.Post("/preload", s.handlePreload)
		r.Get("/export/{kind}", s.handleExport)
	})

	if s.runs != nil {
		r.Get("/api/runs/{runID}", s.handleRun)
	}
	return r
}

// requestLogger logs each request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode request body: %v", player.ErrBadInput, err)
	}
	return nil
}

type credentialStatus struct {
	Configured bool `json:"configured"`
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, credentialStatus{Configured: s.player.Configured()})
}

func (s *Server) handlePutCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.player.SetCredential(r.Context(), req.Credential); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialStatus{Configured: s.player.Configured()})
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.player.ClearCredential(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialStatus{Configured: false})
}

// respond writes snap on success and the mapped error otherwise.
func respond(w http.ResponseWriter, snap player.Snapshot, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic    string `json:"topic"`
		Audience string `json:"audience"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.player.Start(r.Context(), req.Topic, req.Audience)
	respond(w, snap, err)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	snap, err := s.player.Reset(r.Context())
	respond(w, snap, err)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	snap, err := s.player.Resume(r.Context())
	respond(w, snap, err)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	snap, err := s.player.Advance(r.Context())
	respond(w, snap, err)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View    string `json:"view"`
		Chapter int    `json:"chapter"`
		Section int    `json:"section"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	kind, err := navigation.ParseKind(req.View)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", player.ErrBadInput, err))
		return
	}
	snap, err := s.player.Jump(r.Context(), navigation.View{Kind: kind, Chapter: req.Chapter, Section: req.Section})
	respond(w, snap, err)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.player.Regenerate(r.Context())
	respond(w, snap, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question int `json:"question"`
		Option   int `json:"option"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.player.SelectAnswer(req.Question, req.Option)
	respond(w, snap, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []int `json:"answers"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	_, snap, err := s.player.SubmitQuiz(req.Answers)
	respond(w, snap, err)
}

func (s *Server) handleRetake(w http.ResponseWriter, r *http.Request) {
	snap, err := s.player.RetakeQuiz()
	respond(w, snap, err)
}

type failedUnit struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type batchSummary struct {
	RunID     string          `json:"runId"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    []failedUnit    `json:"failed"`
	Snapshot  player.Snapshot `json:"snapshot"`
}

func summarize(report batch.Report[course.Course], snap player.Snapshot) batchSummary {
	out := batchSummary{
		RunID:     report.RunID,
		Total:     report.Total,
		Succeeded: len(report.Succeeded),
		Failed:    make([]failedUnit, 0, len(report.Failed)),
		Snapshot:  snap,
	}
	for _, f := range report.Failed {
		out.Failed = append(out.Failed, failedUnit{Name: f.Name, Error: f.Err.Error()})
	}
	return out
}

func (s *Server) handlePreload(w http.ResponseWriter, r *http.Request) {
	report, err := s.player.Preload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(report, s.player.Snapshot()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", player.ErrBadInput, err))
		return
	}
	out, err := s.player.Export(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Units-Failed", strconv.Itoa(len(out.Report.Failed)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		slog.Warn("failed to write export", "filename", out.Filename, "error", err)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	events, err := s.runs.Run(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(events) == 0 {
		writeJSON(w, http.StatusNotFound, errorBody{Error: CodeNotFound, Message: "unknown run " + runID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runId": runID, "events": events})
}
