// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "authapp/internal/delivery/context"
	"authapp/internal/domain/entity"
	domainerrors "authapp/internal/domain/errors"
	"authapp/internal/domain/repository"
	"authapp/internal/domain/service"
	"authapp/internal/errors"
	"authapp/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface. It holds no mutable state.
type authService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger

	// dummyDigest is compared against on unknown emails so that a miss
	// costs the same bcrypt work as a wrong password.
	dummyDigest func() string
}

const dummyPassword = "no-such-account"

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	hasher := params.Hasher

	return &authService{
		accountRepo:  params.AccountRepo,
		hasher:       hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
		dummyDigest: sync.OnceValue(func() string {
			digest, err := hasher.Hash(dummyPassword)
			if err != nil {
				return ""
			}

			return digest
		}),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account and issues a token for it.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutcome, error) {
	if input == nil || input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if len(input.Password) > service.MaxPasswordBytes {
		return nil, errors.WithStack(domainerrors.ErrPasswordTooLong)
	}

	srv.log(ctx).Debug("Starting registration", slog.String("email", input.Email))

	_, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		srv.log(ctx).Info("Registration rejected, email already in use", slog.String("email", input.Email))

		return &usecase.RegisterOutcome{Status: usecase.RegisterStatusEmailTaken}, nil
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, errors.Wrap(err, "failed to look up account")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate account id")
	}

	account := &entity.Account{
		ID:           id,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hashedPassword,
	}

	if err := srv.accountRepo.Insert(ctx, account); err != nil {
		// Lost the race against a concurrent registration for the same email.
		if errors.Is(err, repository.ErrAccountAlreadyExists) {
			srv.log(ctx).Info("Registration rejected by store, email already in use", slog.String("email", input.Email))

			return &usecase.RegisterOutcome{Status: usecase.RegisterStatusEmailTaken}, nil
		}

		return nil, errors.Wrap(err, "failed to insert account")
	}

	token, err := srv.issueToken(ctx, account.Email)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Account registered", slog.String("email", account.Email), slog.Any("accountID", account.ID))

	return &usecase.RegisterOutcome{Status: usecase.RegisterStatusRegistered, Token: token}, nil
}

// Login verifies credentials and issues a token.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutcome, error) {
	if input == nil {
		return nil, errors.WithStack(domainerrors.ErrInvalidRequestBody)
	}

	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	account, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			if digest := srv.dummyDigest(); digest != "" {
				srv.hasher.Check(input.Password, digest)
			}
			srv.log(ctx).Info("Login failed", slog.String("email", input.Email))

			return invalidCredentials(), nil
		}

		return nil, errors.Wrap(err, "failed to look up account")
	}

	// Constant-time comparison is bcrypt's job.
	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Info("Login failed", slog.String("email", input.Email))

		return invalidCredentials(), nil
	}

	token, err := srv.issueToken(ctx, account.Email)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Account logged in", slog.Any("accountID", account.ID))

	return &usecase.LoginOutcome{Status: usecase.LoginStatusAuthenticated, Token: token}, nil
}

// Authenticate verifies a bearer token and returns its subject email.
func (srv *authService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.WithStack(domainerrors.ErrTokenInvalid)
	}

	claims, err := srv.tokenService.Verify(token)
	if err != nil {
		srv.log(ctx).Debug("Token rejected", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
	}

	return claims.Subject, nil
}

func (srv *authService) issueToken(ctx context.Context, email string) (string, error) {
	token, err := srv.tokenService.Issue(email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.String("email", email), slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return token, nil
}

func invalidCredentials() *usecase.LoginOutcome {
	return &usecase.LoginOutcome{Status: usecase.LoginStatusInvalidCredentials}
}
