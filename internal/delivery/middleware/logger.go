package middleware

import (
	"log/slog"
	"time"

	"authapp/config"
	deliverycontext "authapp/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware logs one line per request with the request-scoped logger
type LoggerMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger,
		debug:  config.Env.Debug,
	}
}

// Handle processes request logging
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// Render the error now so the logged status is the one sent.
			c.Error(err)
		}

		m.logRequest(c, start, err)

		return nil
	}
}

// logRequest writes the access line. Bodies are never logged: they carry passwords.
func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time, err error) {
	req := c.Request()
	status := c.Response().Status

	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs,
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", status),
		slog.Duration("latency", time.Since(start)),
		slog.String("remote_ip", c.RealIP()),
	)
	if m.debug {
		attrs = append(attrs, slog.String("user_agent", req.UserAgent()))
	}
	if email, ok := deliverycontext.GetAccountEmail(c); ok {
		attrs = append(attrs, slog.String("account", email))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	deliverycontext.GetLoggerOrDefault(req.Context(), m.logger).
		LogAttrs(req.Context(), levelForStatus(status), "HTTP request", attrs...)
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
