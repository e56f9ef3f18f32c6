package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	httpAdapter "github.com/aretw0/sitepass/pkg/adapters/http"
)

// NewServer builds the HTTP server of app. streams must be the manager
// whose hooks were passed to Bootstrap, or nil.
func NewServer(app *App, streams *httpAdapter.StreamManager) (*http.Server, error) {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithCORSOrigins(app.Config.HTTP.CORSOrigins),
		httpAdapter.WithRateLimit(app.Config.HTTP.RateLimit, app.Config.HTTP.RateBurst),
		httpAdapter.WithGatherer(app.Registry),
	}
	if streams != nil {
		opts = append(opts, httpAdapter.WithStreams(streams))
	}
	handler, err := httpAdapter.NewHandler(app.Service, opts...)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:         app.Config.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  app.Config.HTTP.ReadTimeout,
		WriteTimeout: app.Config.HTTP.WriteTimeout,
	}, nil
}

// Serve runs srv on ln until ctx is cancelled, then shuts it down within
// the configured timeout.
func Serve(ctx context.Context, app *App, srv *http.Server, ln net.Listener) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		app.Logger.Info("Starting sitepass server", "addr", ln.Addr().String(), "store", app.Config.Store.Backend)
		serverErrors <- srv.Serve(ln)
	}()

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.HTTP.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "timeout", app.Config.HTTP.ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		app.Logger.Info("sitepass server stopped gracefully")
		return nil
	}
}
