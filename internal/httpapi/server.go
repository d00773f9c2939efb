// Package httpapi serves the health and metrics endpoints of `jobmail serve`.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/scheduler"
)

// StatusSource reports the latest run per mode.
type StatusSource interface {
	LastRuns() map[models.Mode]scheduler.RunStatus
}

type healthResponse struct {
	Status   string                         `json:"status"`
	Version  string                         `json:"version,omitempty"`
	Time     time.Time                      `json:"time"`
	LastRuns map[string]scheduler.RunStatus `json:"last_runs"`
}

// requestLogger logs each request through zerolog.
func requestLogger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Debug().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Str("request_id", chiMiddleware.GetReqID(r.Context())).
					Dur("elapsed", time.Since(start)).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// NewRouter mounts the health handler at healthPath and metrics at /metrics.
func NewRouter(healthPath, version string, status StatusSource, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{
			Status:   "ok",
			Version:  version,
			Time:     time.Now().UTC(),
			LastRuns: map[string]scheduler.RunStatus{},
		}
		if status != nil {
			for mode, run := range status.LastRuns() {
				resp.LastRuns[string(mode)] = run
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn().Err(err).Msg("failed to encode health response")
		}
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
