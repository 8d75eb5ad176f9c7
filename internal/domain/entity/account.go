// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user keyed by email.
// It is created once at registration and never modified afterwards.
type Account struct {
	ID           uuid.UUID // Surrogate key generated at registration.
	Email        string    // Natural key. Matched exactly, without case folding.
	FirstName    string    // Display metadata, not used for authentication.
	LastName     string    // Display metadata, not used for authentication.
	PasswordHash string    // Opaque digest produced by the PasswordHasher.
	CreatedAt    time.Time // Timestamp of when the account was stored.
}
