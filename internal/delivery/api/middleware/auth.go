package middleware

import (
	"strings"

	"authapp/config"
	deliverycontext "authapp/internal/delivery/context"
	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const bearerPrefix = "Bearer "

// AuthMiddleware authenticates requests carrying a token issued at login or registration.
type AuthMiddleware struct {
	uc         usecase.AuthUsecase
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(uc usecase.AuthUsecase, cfg *config.Config) *AuthMiddleware {
	cookieName := ""
	if cfg.Auth != nil && cfg.Auth.Cookie.Enabled {
		cookieName = cfg.Auth.Cookie.Name
	}

	return &AuthMiddleware{uc: uc, cookieName: cookieName}
}

// Authenticate verifies the token from the Authorization header, falling back
// to the token cookie, and records the account email on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := m.uc.Authenticate(c.Request().Context(), m.extractToken(c))
		if err != nil {
			return errors.WithStack(err)
		}

		deliverycontext.SetAccountEmail(c, email)

		return next(c)
	}
}

func (m *AuthMiddleware) extractToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(header[len(bearerPrefix):])
		}

		return ""
	}

	if m.cookieName == "" {
		return ""
	}

	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
