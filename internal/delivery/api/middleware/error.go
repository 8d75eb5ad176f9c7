package middleware

import (
	"log/slog"
	"net/http"

	"authapp/internal/delivery/api/response"
	deliverycontext "authapp/internal/delivery/context"
	domainerrors "authapp/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logFailure(c, err, appErr.ErrorCode())
		} else {
			m.logRejection(c, appErr)
		}

		_ = response.Error(c, appErr.HTTPCode(), appErr.Message())

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code >= http.StatusInternalServerError {
			m.logFailure(c, err, "HTTP_ERROR")
			_ = response.InternalServerError(c)

			return
		}

		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, message)

		return
	}

	// Unknown errors never reach the client
	m.logFailure(c, err, domainerrors.ErrInternalError.ErrorCode())
	_ = response.InternalServerError(c)
}

func (m *ErrorMiddleware) logFailure(c echo.Context, err error, code string) {
	req := c.Request()
	logger := deliverycontext.GetLoggerOrDefault(req.Context(), m.logger)

	logger.Error("Request failed",
		slog.String("code", code),
		slog.String("error", err.Error()),
		slog.String("path", req.URL.Path),
		slog.String("method", req.Method),
	)
}

// logRejection records why a 4xx was sent. Details stay in the log; the
// client only sees the message.
func (m *ErrorMiddleware) logRejection(c echo.Context, appErr domainerrors.AppError) {
	req := c.Request()
	attrs := []slog.Attr{slog.String("code", appErr.ErrorCode())}
	if details := appErr.Details(); details != "" {
		attrs = append(attrs, slog.String("details", details))
	}

	deliverycontext.GetLoggerOrDefault(req.Context(), m.logger).
		LogAttrs(req.Context(), slog.LevelDebug, "Request rejected", attrs...)
}
