package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the claims carried by an issued token.
// The subject (RegisteredClaims.Subject) is the account email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	// Issue creates a signed token asserting subjectEmail as the subject.
	Issue(subjectEmail string) (string, error)

	// Verify checks the signature of a token and returns its claims.
	Verify(tokenString string) (*Claims, error)
}
