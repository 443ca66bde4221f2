package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roman-kulish/greensight/internal/api"
	"github.com/roman-kulish/greensight/internal/web"
)

// Version is reported by the health endpoint and set at build time
var Version = "dev"

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	e, err := NewServer(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	server := &http.Server{
		Addr:         config.Server.Address,
		Handler:      e,
		ReadTimeout:  time.Duration(config.Server.ReadTimeout),
		WriteTimeout: time.Duration(config.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		logger.Info("listening",
			slog.String("address", config.Server.Address),
			slog.String("revision", config.Pipeline.Revision),
			slog.String("bodyLimit", config.Server.BodyLimit.String()))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx := context.Background()
	if timeout := time.Duration(config.Server.ShutdownTimeout); timeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, timeout)
		defer cancel()
	}

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	return nil
}

// NewServer wires the API handlers, the middleware and the upload page
func NewServer(config *Config, logger *slog.Logger) (*echo.Echo, error) {
	policy, err := config.Pipeline.Policy()
	if err != nil {
		return nil, err
	}

	handler, err := api.NewHandler(api.Options{
		Version:     Version,
		Policy:      policy,
		PreviewDPI:  config.Render.PreviewDPI,
		DownloadDPI: config.Render.DownloadDPI,
		BodyLimit:   uint64(config.Server.BodyLimit),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating handler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		Logger:         logger,
		BodyLimit:      uint64(config.Server.BodyLimit),
		RequestLogging: config.Server.RequestLogging,
	})
	api.RegisterRoutes(e, handler)

	if err = web.RegisterStaticRoutes(e); err != nil {
		return nil, fmt.Errorf("registering static routes: %w", err)
	}

	return e, nil
}
