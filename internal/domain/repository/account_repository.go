// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authapp/internal/domain/entity"
)

var (
	// ErrAccountNotFound is returned by FindByEmail when no account has the given email.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists is returned by Insert when another account already holds the email.
	ErrAccountAlreadyExists = errors.New("account already exists")
)

// AccountRepository is the credential store used by the authentication flow.
type AccountRepository interface {
	// FindByEmail retrieves the account whose email equals the argument exactly.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Insert stores a new account. It must be atomic with respect to concurrent
	// inserts of the same email: at most one of them succeeds, the others get
	// ErrAccountAlreadyExists.
	Insert(ctx context.Context, account *entity.Account) error
}
