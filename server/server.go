// Package server exposes the conversion engine over HTTP for browser
// clients: multipart upload in, converted bytes out.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/hazyhaar/convertd/convert"
	"github.com/hazyhaar/convertd/format"
	"github.com/hazyhaar/convertd/history"
)

// Server wires the conversion engine to the HTTP boundary.
type Server struct {
	cfg     Config
	engine  *convert.Engine
	history *history.Log // nil when history is disabled
	logger  *slog.Logger
}

// New creates a Server. hist may be nil.
func New(cfg Config, engine *convert.Engine, hist *history.Log, logger *slog.Logger) *Server {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, engine: engine, history: hist, logger: logger}
}

// Router builds the HTTP handler with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Post("/api/convert", s.handleConvert)
	r.Get("/api/formats", s.handleFormats)
	r.Get("/healthz", s.handleHealthz)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	return c.Handler(r)
}

// securityHeaders adds the baseline headers for a browser-facing endpoint.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// handleConvert accepts a multipart form with a "file" part and a "format"
// field naming the target, and responds with the converted bytes.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	target := format.ID(r.FormValue("format"))
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing format field")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}

	start := time.Now()
	res, err := s.engine.Convert(r.Context(), convert.Request{
		Data:     data,
		Filename: header.Filename,
		Target:   target,
	})
	s.record(r, header.Filename, target, len(data), res, err, time.Since(start))

	if err != nil {
		status := http.StatusInternalServerError
		var unsupported *convert.ErrUnsupportedConversion
		var unknown *convert.ErrUnknownFormat
		if errors.As(err, &unsupported) || errors.As(err, &unknown) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("conversion failed",
			"filename", header.Filename, "target", target, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	s.logger.Info("conversion complete",
		"filename", header.Filename, "target", target,
		"input_bytes", len(data), "output_bytes", len(res.Data),
		"duration", time.Since(start))

	w.Header().Set("Content-Type", res.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(res.Data)
}

// record logs the attempt to the history store when one is configured.
func (s *Server) record(r *http.Request, filename string, target format.ID, inBytes int, res *convert.Result, convErr error, d time.Duration) {
	if s.history == nil {
		return
	}
	entry := history.Entry{
		Filename:     filename,
		OutputFormat: string(target),
		InputBytes:   inBytes,
		Success:      convErr == nil,
		Duration:     d,
	}
	if in, err := format.Classify(filename); err == nil {
		entry.InputFormat = string(in)
	}
	if convErr != nil {
		entry.Error = convErr.Error()
	} else {
		entry.OutputBytes = len(res.Data)
	}
	s.history.Record(r.Context(), entry)
}

// handleFormats returns the availability map: each known input format and
// the outputs offered for it.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]string)
	for _, id := range format.All() {
		outputs := format.Outputs(id)
		names := make([]string, len(outputs))
		for i, o := range outputs {
			names[i] = string(o)
		}
		out[string(id)] = names
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeError sends the structured failure payload.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
