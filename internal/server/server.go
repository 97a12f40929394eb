// Package server exposes the daemon's local control API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/history"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
)

// Daemon is the part of the daemon the API drives.
type Daemon interface {
	Snapshot() daemon.Snapshot
	Tick(ctx context.Context) daemon.Report
}

// History lists journal entries. It may be nil when the journal is disabled.
type History interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

type Options struct {
	Daemon  Daemon
	History History
	Metrics bool
	Logger  *slog.Logger
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ApplyResponse summarizes an on-demand tick.
type ApplyResponse struct {
	TickID          string `json:"tick_id"`
	IdleSeconds     int64  `json:"idle_seconds"`
	State           string `json:"state"`
	ProfileInvoked  bool   `json:"profile_invoked"`
	ProfileError    string `json:"profile_error,omitempty"`
	LightingSource  string `json:"lighting_source"`
	LightingApplied bool   `json:"lighting_applied"`
	LightingSkipped string `json:"lighting_skipped,omitempty"`
	LightingError   string `json:"lighting_error,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
}

const maxHistoryLimit = 500

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("server.response.encode_failed", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// NewHandler builds the chi router for the control API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, opts.Daemon.Snapshot())
	})

	r.Post("/apply", func(w http.ResponseWriter, r *http.Request) {
		report := opts.Daemon.Tick(r.Context())
		writeJSON(w, http.StatusOK, applyResponse(report))
	})

	r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		if opts.History == nil {
			writeJSONError(w, http.StatusNotFound, "history_disabled", "history journal is disabled")
			return
		}

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSONError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		entries, err := opts.History.Recent(r.Context(), limit)
		if err != nil {
			logger.Error("server.history.query_failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "history_unavailable", "history query failed")
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	if opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func applyResponse(r daemon.Report) ApplyResponse {
	resp := ApplyResponse{
		TickID:          r.TickID,
		IdleSeconds:     r.Reading.Seconds,
		State:           r.Profile.To.String(),
		ProfileInvoked:  r.Profile.Invoked,
		LightingSource:  r.Lighting.Source.String(),
		LightingApplied: r.Lighting.Applied,
		LightingSkipped: r.Lighting.Skipped,
		DurationMS:      r.Duration.Milliseconds(),
	}
	if r.Profile.Err != nil {
		resp.ProfileError = r.Profile.Err.Error()
	}
	if r.Lighting.Err != nil {
		resp.LightingError = r.Lighting.Err.Error()
	}
	return resp
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := logging.EnsureRequestID(r.Header.Get(logging.RequestIDHeader))
			w.Header().Set(logging.RequestIDHeader, requestID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("server.request.completed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}

// Start serves handler on address until ctx is done.
func Start(ctx context.Context, address string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server.started", "address", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server.stopped")
	return nil
}
