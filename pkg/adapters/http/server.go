// Package http exposes a navigator over a small JSON API with server-sent events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/stream"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Navigator defines what the server drives.
type Navigator interface {
	Snapshot() waypoint.State
	Updates() stream.Observable[waypoint.State]
	Push(ctx context.Context, target string) error
	Pop(ctx context.Context) (bool, error)
	Replace(ctx context.Context, target string) error
	NewRoot(ctx context.Context, target string) error
	Remove(ctx context.Context, id domain.ID) (bool, error)
	Back(ctx context.Context) (bool, error)
	SetProgress(ctx context.Context, p float64)
	Save(ctx context.Context) error
}

var _ Navigator = (*waypoint.Navigator)(nil)

// TargetRequest is the body of push, replace and new-root.
type TargetRequest struct {
	Target string `json:"target"`
}

// ProgressRequest is the body of progress.
type ProgressRequest struct {
	Progress float64 `json:"progress"`
}

// OperationResponse reports whether an operation changed anything and the state after it.
type OperationResponse struct {
	Applied bool           `json:"applied"`
	State   waypoint.State `json:"state"`
}

// Server handles the API routes.
type Server struct {
	Navigator Navigator
	logger    *slog.Logger
	gatherer  prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for nav.
func NewHandler(nav Navigator, opts ...Option) http.Handler {
	s := &Server{
		Navigator: nav,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/state", s.GetState)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/push", s.Push)
	r.Post("/pop", s.Pop)
	r.Post("/replace", s.Replace)
	r.Post("/new-root", s.NewRoot)
	r.Post("/remove/{id}", s.Remove)
	r.Post("/back", s.Back)
	r.Post("/progress", s.Progress)
	r.Post("/save", s.Save)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "waypoint-http",
		"version": strings.TrimSpace(waypoint.Version),
	})
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Navigator.Snapshot())
}

// Push handles the POST /push request.
func (s *Server) Push(w http.ResponseWriter, r *http.Request) {
	s.withTarget(w, r, "Push", s.Navigator.Push)
}

// Replace handles the POST /replace request.
func (s *Server) Replace(w http.ResponseWriter, r *http.Request) {
	s.withTarget(w, r, "Replace", s.Navigator.Replace)
}

// NewRoot handles the POST /new-root request.
func (s *Server) NewRoot(w http.ResponseWriter, r *http.Request) {
	s.withTarget(w, r, "NewRoot", s.Navigator.NewRoot)
}

// Pop handles the POST /pop request.
func (s *Server) Pop(w http.ResponseWriter, r *http.Request) {
	applied, err := s.Navigator.Pop(r.Context())
	s.respond(w, "Pop", applied, err)
}

// Back handles the POST /back request.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	applied, err := s.Navigator.Back(r.Context())
	s.respond(w, "Back", applied, err)
}

// Remove handles the POST /remove/{id} request.
func (s *Server) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid element id: %v", err), http.StatusBadRequest)
		return
	}
	applied, err := s.Navigator.Remove(r.Context(), id)
	s.respond(w, "Remove", applied, err)
}

// Progress handles the POST /progress request.
func (s *Server) Progress(w http.ResponseWriter, r *http.Request) {
	var body ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Progress: Invalid request body", "err", err)
		return
	}
	s.Navigator.SetProgress(r.Context(), body.Progress)
	s.respond(w, "Progress", true, nil)
}

// Save handles the POST /save request.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	err := s.Navigator.Save(r.Context())
	s.respond(w, "Save", err == nil, err)
}

// SubscribeEvents handles the GET /events request (SSE). Every committed state is sent
// as one data frame, starting with the current one.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := s.Navigator.Updates().Subscribe(r.Context())
	s.logger.Info("SSE: Client subscribed")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected")
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(st)
			if err != nil {
				s.logger.Error("SSE: encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) withTarget(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, string) error) {
	var body TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn(name+": Invalid request body", "err", err)
		return
	}
	if strings.TrimSpace(body.Target) == "" {
		http.Error(w, "Target is required", http.StatusBadRequest)
		return
	}
	err := fn(r.Context(), body.Target)
	s.respond(w, name, err == nil, err)
}

func (s *Server) respond(w http.ResponseWriter, name string, applied bool, err error) {
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error(name+" failed", "err", err)
		} else {
			s.logger.Warn(name+" rejected", "err", err)
		}
		http.Error(w, fmt.Sprintf("%s error: %v", name, err), status)
		return
	}
	s.writeJSON(w, http.StatusOK, OperationResponse{Applied: applied, State: s.Navigator.Snapshot()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, waypoint.ErrInvalidTarget), errors.Is(err, waypoint.ErrTargetTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, waypoint.ErrNoSession):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
