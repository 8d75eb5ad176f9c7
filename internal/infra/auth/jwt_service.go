// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authapp/config"
	"authapp/internal/domain/service"
	"authapp/internal/errors"
)

// ErrEmptySubject is returned when a token is issued for, or carries, an empty subject.
var ErrEmptySubject = errors.New("token subject is empty")

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Tokens carry no expiry; the secret is fixed for the lifetime of the process.
type jwtService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It takes the signing secret from configuration.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		now:    time.Now,
	}, nil
}

// Issue creates a signed HS256 token whose subject is the given email.
func (s *jwtService) Issue(subjectEmail string) (string, error) {
	if subjectEmail == "" {
		return "", ErrEmptySubject
	}

	claims := service.Claims{
		Email: subjectEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subjectEmail,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks the validity of a token string and returns its claims.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	if claims.Subject == "" {
		return nil, ErrEmptySubject
	}

	return claims, nil
}
