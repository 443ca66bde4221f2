// routes.go - Route and middleware registration
package api

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MiddlewareConfig controls the common middleware stack
type MiddlewareConfig struct {
	Logger         *slog.Logger
	BodyLimit      uint64 // Bytes, 0 disables the limit
	RequestLogging bool
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/health", h.HandleHealth)

	spectrumGroup := e.Group("/api/spectrum")
	spectrumGroup.POST("/analyze", h.HandleAnalyze)
	spectrumGroup.POST("/plot", h.HandlePlot)
}

// SetupMiddleware configures the error handler, recovery, request logging
// and the upload size limit.
func SetupMiddleware(e *echo.Echo, config MiddlewareConfig) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Use(middleware.Recover())

	if config.RequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRemoteIP:  true,
			LogRequestID: true,
			LogError:     true,
			HandleError:  true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				level := slog.LevelInfo
				attrs := []slog.Attr{
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
					slog.String("remote", v.RemoteIP),
				}
				if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
					attrs = append(attrs, slog.String("id", id))
				}
				if v.Error != nil {
					level = slog.LevelWarn
					attrs = append(attrs, slog.String("error", v.Error.Error()))
				}
				logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
				return nil
			},
		}))
	}

	if config.BodyLimit > 0 {
		e.Use(middleware.BodyLimit(strconv.FormatUint(config.BodyLimit, 10)))
	}
}
