// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	gojson "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moodify/internal/ai"
	"moodify/internal/playlist"
)

// Recommender produces the decorated songs for a descriptor.
type Recommender interface {
	Generate(ctx context.Context, d ai.Descriptor) ([]string, error)
}

type Options struct {
	Recommender Recommender
	// RateLimit is requests per minute per client IP on /api. Zero disables it.
	RateLimit int
}

type songsResponse struct {
	Songs []string `json:"songs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	recommender Recommender
}

// NewRouter builds the HTTP routes.
func NewRouter(opts Options) http.Handler {
	h := &handler{recommender: opts.Recommender}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
		}
		r.Post("/generate", h.generate)
		r.Post("/mock", h.mock)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	var d ai.Descriptor
	if err := decodeBody(r, &d); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	slog.Info("received generate request", "mood", d.Mood, "era", d.Era, "language", d.Language)

	songs, err := h.recommender.Generate(r.Context(), d)
	if err != nil {
		slog.Error("unhandled exception", "err", err, "request_id", chimiddleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, songsResponse{Songs: songs})
}

func (h *handler) mock(w http.ResponseWriter, r *http.Request) {
	var d ai.Descriptor
	_ = decodeBody(r, &d)
	slog.Info("mock generate called (used as fallback)")
	writeJSON(w, http.StatusOK, songsResponse{Songs: playlist.Mock()})
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return gojson.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

// Serve runs the router on addr until ctx is done, then shuts down.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
