package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Vodeneev/matchpredict/internal/pkg/health/handlers"
	"github.com/Vodeneev/matchpredict/internal/pkg/performance"
)

// Register adds /ping, /health and /metrics to r.
func Register(r *mux.Router) {
	r.HandleFunc("/ping", handlers.HandlePing).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", handlers.HandleMetrics).Methods(http.MethodGet)
}

// TrackRequests records the latency of every routed request in the
// performance tracker as "<service>.http METHOD /route/template".
func TrackRequests(service string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					name = tpl
				}
			}
			done := performance.GetTracker().Track(service+".http "+r.Method+" "+name, "")
			next.ServeHTTP(w, r)
			done(nil)
		})
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
// It blocks and returns nil after a clean shutdown.
func Run(ctx context.Context, addr string, service string, handler http.Handler, readHeaderTimeout time.Duration) error {
	if readHeaderTimeout <= 0 {
		return fmt.Errorf("read_header_timeout must be positive")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s server: %w", service, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s server shutdown: %w", service, err)
	}
	slog.Info("HTTP server stopped", "service", service)
	return nil
}
