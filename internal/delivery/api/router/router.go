// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"authapp/internal/delivery/api/middleware"
	"authapp/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	apiGroup := e.Group("/api")
	{
		apiGroup.POST("/register", r.authHandler.Register)
		apiGroup.POST("/login", r.authHandler.Login)
		apiGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}
}
