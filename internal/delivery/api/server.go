package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"authapp/config"
	"authapp/internal/delivery"
	apimiddleware "authapp/internal/delivery/api/middleware"
	"authapp/internal/delivery/api/router"
	"authapp/internal/delivery/api/validator"
	deliverycontext "authapp/internal/delivery/context"
	"authapp/internal/delivery/middleware"
	"authapp/internal/domain/lifecycle"
	"authapp/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
)

type apiServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// ServerParams holds dependencies for HTTP server, injected by Fx.
type ServerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	RouterParams router.RouterParams
}

// NewServer builds the API server and registers its graceful shutdown.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	echoServer := NewEcho(params)

	srv := &apiServer{
		cfg:    params.Cfg,
		logger: params.Logger,
		server: echoServer,
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// NewEcho builds the echo instance with middleware, error handling and routes.
func NewEcho(params ServerParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	timeouts := params.Cfg.HTTP.Timeouts
	e.Server.ReadTimeout = timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = timeouts.WriteTimeout
	e.Server.IdleTimeout = timeouts.IdleTimeout

	e.Use(middlewareChain(params)...)
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(params.Logger).HandleHTTPError
	e.Validator = validator.New()

	router.NewRouter(params.RouterParams).RegisterRoutes(e)

	return e
}

// middlewareChain sets the request id before anything logs. CORS answers
// preflights before the body limit reads anything.
func middlewareChain(params ServerParams) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echomiddleware.Recover(),
		middleware.NewRequestIDMiddleware(params.Logger).Process,
		middleware.NewLoggerMiddleware(params.Logger, params.Cfg).Handle,
		echomiddleware.CORSWithConfig(corsConfig(params.Cfg)),
		echomiddleware.BodyLimit(params.Cfg.HTTP.MaxRequestBodySize),
	}
}

func corsConfig(cfg *config.Config) echomiddleware.CORSConfig {
	return echomiddleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORS.AllowOrigins,
		AllowMethods: cfg.HTTP.CORS.AllowMethods,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			deliverycontext.HeaderXRequestID,
		},
		ExposeHeaders: []string{deliverycontext.HeaderXRequestID},
		// The token cookie only travels cross-origin with credentials allowed.
		AllowCredentials: cfg.Auth != nil && cfg.Auth.Cookie.Enabled,
	}
}

func (s *apiServer) Serve(ctx context.Context) error {
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Auth API listening", slog.String("addr", addr))

	err := s.server.StartH2CServer(addr, &http2.Server{IdleTimeout: s.cfg.HTTP.Timeouts.IdleTimeout})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *apiServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Auth API shutting down")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
