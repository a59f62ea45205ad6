package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"roomadmin/internal/kvstore"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// readyTimeout bounds the store ping behind /readyz.
const readyTimeout = time.Second

type degrader interface {
	Degraded() bool
}

// healthHandler serves liveness on /healthz and store readiness on /readyz.
// A failover store running on its fallback is still ready.
func healthHandler(store kvstore.Pinger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			_, _ = w.Write([]byte("ready"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		if d, ok := store.(degrader); ok && d.Degraded() {
			_, _ = w.Write([]byte("ready (fallback store)"))
			return
		}
		_, _ = w.Write([]byte("ready"))
	})
	return mux
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func opsServer(port int, h http.Handler) *http.Server {
	return &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: h, ReadHeaderTimeout: 5 * time.Second}
}

// serve runs srv until it fails or ctx is done, then drains it for at most grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, name string, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s server shutdown: %w", name, err)
	}
	logger.Debug().Str("server", name).Msg("Server stopped")
	return nil
}

// serveBackground runs serve on its own goroutine and tracks it in wg.
func serveBackground(ctx context.Context, wg *sync.WaitGroup, srv *http.Server, grace time.Duration, name string, logger *zerolog.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := serve(ctx, srv, grace, name, logger); err != nil {
			logger.Error().Err(err).Msg("Server error")
		}
	}()
}
