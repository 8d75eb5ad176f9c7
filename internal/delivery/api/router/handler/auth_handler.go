// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"authapp/config"
	"authapp/internal/delivery/api/response"
	"authapp/internal/delivery/api/validator"
	deliverycontext "authapp/internal/delivery/context"
	domainerrors "authapp/internal/domain/errors"
	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	msgRegistered    = "Registration successful"
	msgLoggedIn      = "Login successful"
	msgAuthenticated = "Authenticated"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required,maxbytes=72"`
}

// LoginRequest is the body of POST /api/login. Missing fields simply fail to authenticate.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	cookie *config.CookieConfig
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	var cookie *config.CookieConfig
	if cfg.Auth != nil && cfg.Auth.Cookie.Enabled {
		cookie = &cfg.Auth.Cookie
	}

	return &AuthHandler{
		uc:     uc,
		cookie: cookie,
		logger: logger,
	}
}

// Register handles the account registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(domainerrors.ErrInvalidRequestBody)
	}

	if err := c.Validate(&req); err != nil {
		if validator.FailedOn(err, "password", "maxbytes") {
			return errors.WithStack(domainerrors.ErrPasswordTooLong)
		}

		fields := validator.FailedFields(err)

		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(strings.Join(fields, ",")))
	}

	outcome, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	switch outcome.Status {
	case usecase.RegisterStatusRegistered:
		h.setTokenCookie(c, outcome.Token)

		return response.Token(c, http.StatusCreated, msgRegistered, outcome.Token)
	case usecase.RegisterStatusEmailTaken:
		return response.BadRequest(c, domainerrors.ErrEmailTaken.Message())
	default:
		return errors.Errorf("unexpected register status: %s", outcome.Status)
	}
}

// Login handles the login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(domainerrors.ErrInvalidRequestBody)
	}

	outcome, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	switch outcome.Status {
	case usecase.LoginStatusAuthenticated:
		h.setTokenCookie(c, outcome.Token)

		return response.Token(c, http.StatusOK, msgLoggedIn, outcome.Token)
	case usecase.LoginStatusInvalidCredentials:
		return response.Unauthorized(c, domainerrors.ErrInvalidCredentials.Message())
	default:
		return errors.Errorf("unexpected login status: %s", outcome.Status)
	}
}

// Me returns the account identified by the request's token. Requires the auth middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	email, ok := deliverycontext.GetAccountEmail(c)
	if !ok {
		return errors.WithStack(domainerrors.ErrTokenInvalid)
	}

	return response.Account(c, msgAuthenticated, email)
}

func (h *AuthHandler) setTokenCookie(c echo.Context, token string) {
	if h.cookie == nil {
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
