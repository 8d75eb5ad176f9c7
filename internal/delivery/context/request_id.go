// Package context carries per-request values between middleware, handlers
// and services.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// accountEmailKey is an echo.Context key; it never leaves the transport layer.
const accountEmailKey = "account_email"

// HeaderXRequestID is the HTTP header name for request ID.
const HeaderXRequestID = "X-Request-Id"

// WithRequest stores the request ID and the logger already tagged with it.
func WithRequest(ctx context.Context, requestID string, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	return context.WithValue(ctx, loggerKey, logger)
}

// RequestID returns the ID stored by WithRequest, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback outside
// a request.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// SetAccountEmail records the authenticated account on the echo.Context.
func SetAccountEmail(c echo.Context, email string) {
	c.Set(accountEmailKey, email)
}

// GetAccountEmail returns the authenticated account set by the auth middleware.
func GetAccountEmail(c echo.Context) (string, bool) {
	email, ok := c.Get(accountEmailKey).(string)

	return email, ok && email != ""
}
