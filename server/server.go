// Package server exposes the loopback control API editor plugins drive the
// preview engine with.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ReneLombard/MarkdownEditor2022/config"
)

// Controller is the narrow slice of the preview controller the API drives.
type Controller interface {
	OnCursorLineChanged(line int)
	OnDocumentChanged()
}

// Exporter produces a PDF of the current preview. Optional.
type Exporter interface {
	ExportPDF(ctx context.Context, path string) error
}

// Server routes editor requests to the engine.
type Server struct {
	ctrl     Controller
	runtime  *config.Runtime
	exporter Exporter
	logger   *slog.Logger
}

// New creates a control API server. exporter may be nil.
func New(ctrl Controller, rt *config.Runtime, exporter Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ctrl: ctrl, runtime: rt, exporter: exporter, logger: logger}
}

// Router builds the chi router for the API.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/cursor", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Line int `json:"line"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.Line < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "line must be >= 0"})
			return
		}
		s.ctrl.OnCursorLineChanged(body.Line)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	})

	r.Post("/changed", func(w http.ResponseWriter, _ *http.Request) {
		s.ctrl.OnDocumentChanged()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	})

	r.Post("/scroll-sync", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.runtime.SetScrollSync(body.Enabled)
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
	})

	r.Post("/export", func(w http.ResponseWriter, req *http.Request) {
		if s.exporter == nil {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "export not available"})
			return
		}
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.Path == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
			return
		}
		if err := s.exporter.ExportPDF(req.Context(), body.Path); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": body.Path})
	})

	return r
}

// requestLog is a minimal slog access-log middleware.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
