package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"authapp/config"
	apimiddleware "authapp/internal/delivery/api/middleware"
	"authapp/internal/delivery/api/response"
	"authapp/internal/delivery/api/validator"
	domainerrors "authapp/internal/domain/errors"
	mockUsecase "authapp/internal/mocks/usecase"
	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authHandlerFixtures holds all test dependencies for auth handler tests.
type authHandlerFixtures struct {
	echo *echo.Echo
	uc   *mockUsecase.MockAuthUsecase
}

func createTestAuthHandler(t *testing.T, cookieEnabled bool) authHandlerFixtures {
	uc := mockUsecase.NewMockAuthUsecase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost: 10,
			Cookie:     config.CookieConfig{Enabled: cookieEnabled, Name: "token"},
		},
	}

	h := NewAuthHandler(uc, cfg, logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(uc, cfg)

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.GET("/health", HealthCheck)
	e.POST("/api/register", h.Register)
	e.POST("/api/login", h.Login)
	e.GET("/api/me", h.Me, authMiddleware.Authenticate)

	return authHandlerFixtures{echo: e, uc: uc}
}

func (fx authHandlerFixtures) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	fx.echo.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.MessageResponse {
	t.Helper()

	var body response.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

const registerBody = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"s3cret"}`

func TestAuthHandler_Register_Success(t *testing.T) {
	fx := createTestAuthHandler(t, true)

	fx.uc.EXPECT().
		Register(mock.Anything, &usecase.RegisterInput{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Password:  "s3cret",
		}).
		Return(&usecase.RegisterOutcome{Status: usecase.RegisterStatusRegistered, Token: "signed.jwt.token"}, nil)

	rec := fx.do(http.MethodPost, "/api/register", registerBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Registration successful", body.Message)
	assert.Equal(t, "signed.jwt.token", body.Token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "signed.jwt.token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	fx := createTestAuthHandler(t, true)

	fx.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(&usecase.RegisterOutcome{Status: usecase.RegisterStatusEmailTaken}, nil)

	rec := fx.do(http.MethodPost, "/api/register", registerBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.MessageResponse{Message: "Email address is already in use"}, decodeBody(t, rec))
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Register_ValidationFailed(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	rec := fx.do(http.MethodPost, "/api/register", `{"email":"ada@example.com","password":"s3cret"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domainerrors.ErrValidationFailed.Message(), decodeBody(t, rec).Message)
}

func TestAuthHandler_Register_PasswordTooLong(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	body := `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"` +
		strings.Repeat("p", 73) + `"}`
	rec := fx.do(http.MethodPost, "/api/register", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domainerrors.ErrPasswordTooLong.Message(), decodeBody(t, rec).Message)
	fx.uc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	rec := fx.do(http.MethodPost, "/api/register", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rec).Message)
}

func TestAuthHandler_Register_InfrastructureFailure(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	fx.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(nil, domainerrors.NewDatabaseExecuteError(errors.New("dial tcp 10.0.0.5:5432: connection refused"), "failed to find account by email"))

	rec := fx.do(http.MethodPost, "/api/register", registerBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, response.MessageResponse{Message: "An internal server error occurred"}, decodeBody(t, rec))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestAuthHandler_Register_UnknownError(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	fx.uc.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(nil, errors.New("pq: password authentication failed for user admin"))

	rec := fx.do(http.MethodPost, "/api/register", registerBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal server error occurred", decodeBody(t, rec).Message)
	assert.NotContains(t, rec.Body.String(), "admin")
}

func TestAuthHandler_Login_Success(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	fx.uc.EXPECT().
		Login(mock.Anything, &usecase.LoginInput{Email: "ada@example.com", Password: "s3cret"}).
		Return(&usecase.LoginOutcome{Status: usecase.LoginStatusAuthenticated, Token: "signed.jwt.token"}, nil)

	rec := fx.do(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"s3cret"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.MessageResponse{Message: "Login successful", Token: "signed.jwt.token"}, decodeBody(t, rec))
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	fx := createTestAuthHandler(t, true)

	fx.uc.EXPECT().
		Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(&usecase.LoginOutcome{Status: usecase.LoginStatusInvalidCredentials}, nil)

	rec := fx.do(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.MessageResponse{
		Message: "Invalid email or password. Please check your credentials and try again.",
	}, decodeBody(t, rec))
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("bearer token", func(t *testing.T) {
		fx := createTestAuthHandler(t, true)
		fx.uc.EXPECT().Authenticate(mock.Anything, "signed.jwt.token").Return("ada@example.com", nil)

		rec := fx.do(http.MethodGet, "/api/me", "", echo.HeaderAuthorization, "Bearer signed.jwt.token")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, response.MessageResponse{Message: "Authenticated", Email: "ada@example.com"}, decodeBody(t, rec))
	})

	t.Run("cookie", func(t *testing.T) {
		fx := createTestAuthHandler(t, true)
		fx.uc.EXPECT().Authenticate(mock.Anything, "cookie.jwt.token").Return("ada@example.com", nil)

		rec := fx.do(http.MethodGet, "/api/me", "", "Cookie", "token=cookie.jwt.token")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ada@example.com", decodeBody(t, rec).Email)
	})

	t.Run("cookie ignored when disabled", func(t *testing.T) {
		fx := createTestAuthHandler(t, false)
		fx.uc.EXPECT().
			Authenticate(mock.Anything, "").
			Return("", errors.WithStack(domainerrors.ErrTokenInvalid))

		rec := fx.do(http.MethodGet, "/api/me", "", "Cookie", "token=cookie.jwt.token")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		fx := createTestAuthHandler(t, true)
		fx.uc.EXPECT().
			Authenticate(mock.Anything, "forged").
			RunAndReturn(func(context.Context, string) (string, error) {
				return "", errors.Wrap(domainerrors.ErrTokenInvalid, "signature is invalid")
			})

		rec := fx.do(http.MethodGet, "/api/me", "", echo.HeaderAuthorization, "Bearer forged")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domainerrors.ErrTokenInvalid.Message(), decodeBody(t, rec).Message)
	})
}

func TestHealthCheck(t *testing.T) {
	fx := createTestAuthHandler(t, false)

	rec := fx.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.MessageResponse{Message: "ok"}, decodeBody(t, rec))
}
