// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Outcomes ---

// RegisterStatus tags the expected results of a registration.
type RegisterStatus int

const (
	// RegisterStatusRegistered means the account was created and a token issued.
	RegisterStatusRegistered RegisterStatus = iota + 1
	// RegisterStatusEmailTaken means another account already holds the email.
	RegisterStatusEmailTaken
)

func (s RegisterStatus) String() string {
	switch s {
	case RegisterStatusRegistered:
		return "registered"
	case RegisterStatusEmailTaken:
		return "email_taken"
	default:
		return "unknown"
	}
}

// RegisterOutcome is the result of Register. Token is set only when Status is RegisterStatusRegistered.
type RegisterOutcome struct {
	Status RegisterStatus
	Token  string
}

// LoginStatus tags the expected results of a login.
type LoginStatus int

const (
	// LoginStatusAuthenticated means the credentials matched and a token was issued.
	LoginStatusAuthenticated LoginStatus = iota + 1
	// LoginStatusInvalidCredentials covers both an unknown email and a wrong password.
	LoginStatusInvalidCredentials
)

func (s LoginStatus) String() string {
	switch s {
	case LoginStatusAuthenticated:
		return "authenticated"
	case LoginStatusInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unknown"
	}
}

// LoginOutcome is the result of Login. Token is set only when Status is LoginStatusAuthenticated.
type LoginOutcome struct {
	Status LoginStatus
	Token  string
}

// AuthUsecase defines the authentication operations.
// Expected results are reported through outcomes; a non-nil error always means an infrastructure fault
// or a violated precondition.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutcome, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutcome, error)

	// Authenticate verifies a bearer token and returns the email it was issued for.
	Authenticate(ctx context.Context, token string) (string, error)
}
