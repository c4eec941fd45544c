// Package httpserver exposes the view engine over HTTP: websocket and
// SSE update streams for connected frontends, a JSON read surface for
// views, and the operational endpoints.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viewdeck/viewdeck/pkg/view"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the listen address. Default: ":8080".
	Addr string

	// MetricsEnabled mounts /metrics.
	MetricsEnabled bool

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		MetricsEnabled:  true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves the HTTP surface for one view manager.
type Server struct {
	config  *Config
	manager *view.Manager
	logger  *slog.Logger
	http    *http.Server
}

// New creates the server and its route table.
func New(config *Config, manager *view.Manager, logger *slog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  config,
		manager: manager,
		logger:  logger.With("component", "http_server"),
	}
	s.http = &http.Server{
		Addr:    config.Addr,
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	// The status-recording middlewares stay off the streaming routes:
	// wrapping the writer would hide http.Hijacker from the websocket
	// upgrade and http.Flusher from SSE.
	r.Group(func(r chi.Router) {
		r.Use(requestLogger(s.logger))
		r.Use(tracing())

		r.Get("/healthz", s.handleHealth)
		if s.config.MetricsEnabled {
			r.Handle("/metrics", promhttp.Handler())
		}
		r.Route("/views", func(r chi.Router) {
			r.Get("/", s.handleListViews)
			r.Get("/{viewID}", s.handleGetView)
		})
	})

	r.Get("/ws", s.handleWebSocket)
	r.Get("/events", s.handleSSE)
	return r
}

// Handler returns the route table, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the context is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.config.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.manager.ListViews(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"views": views,
		"total": len(views),
	})
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	adapterType := r.URL.Query().Get("adapter")

	result, err := s.manager.Render(r.Context(), viewID, adapterType)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, view.ErrViewNotFound),
		errors.Is(err, view.ErrComponentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, view.ErrUnknownAdapter):
		status = http.StatusBadRequest
	case errors.Is(err, view.ErrAuthoringDisabled):
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
