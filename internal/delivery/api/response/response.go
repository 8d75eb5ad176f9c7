// Package response renders the JSON bodies returned by the API.
package response

import (
	"net/http"

	domainerrors "authapp/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// MessageResponse is the body of every API response.
type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Message returns a body carrying only a message.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageResponse{Message: message})
}

// Token returns a body carrying a message and an issued token.
func Token(c echo.Context, statusCode int, message, token string) error {
	return c.JSON(statusCode, MessageResponse{Message: message, Token: token})
}

// Account returns a body identifying the authenticated account.
func Account(c echo.Context, message, email string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: message, Email: email})
}

// Error returns an error body. Only the user-facing message is exposed.
func Error(c echo.Context, statusCode int, message string) error {
	return Message(c, statusCode, message)
}

// BadRequest returns a 400 error
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// Unauthorized returns a 401 error
func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}

// InternalServerError returns the generic 500 error
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, domainerrors.ErrInternalError.Message())
}

// HandleAppError renders application errors, passing anything else on to the central handler
func HandleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return Error(c, appErr.HTTPCode(), appErr.Message())
	}

	return errors.WithStack(err)
}
