package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"authapp/config"
	deliverycontext "authapp/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(buf *bytes.Buffer) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := echo.New()
	e.Use(NewRequestIDMiddleware(logger).Process)
	e.Use(NewLoggerMiddleware(logger, &config.Config{}).Handle)

	return e
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEcho(&buf)

	var seen string
	e.GET("/ping", func(c echo.Context) error {
		seen = deliverycontext.RequestID(c.Request().Context())
		require.NotNil(t, deliverycontext.GetLoggerOrDefault(c.Request().Context(), nil))

		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Contains(t, buf.String(), "request_id="+seen)
}

func TestRequestIDMiddleware_ClientID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "valid", incoming: "req-123", keep: true},
		{name: "too long", incoming: strings.Repeat("a", maxRequestIDLength+1), keep: false},
		{name: "control characters", incoming: "req\t123", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := newTestEcho(&buf)
			e.GET("/ping", func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Get(deliverycontext.HeaderXRequestID)
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				assert.NotEmpty(t, got)
			}
		})
	}
}

func TestLoggerMiddleware_LogsRenderedStatus(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEcho(&buf)
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLoggerMiddleware_LogsAccount(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEcho(&buf)
	e.GET("/me", func(c echo.Context) error {
		deliverycontext.SetAccountEmail(c, "ada@example.com")

		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Contains(t, buf.String(), "account=ada@example.com")
	assert.Contains(t, buf.String(), "level=INFO")
}
