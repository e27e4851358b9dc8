// Package auth is the access gate: it issues admin bearer tokens and turns
// them back into a binary admit/deny decision. The rest of the service
// never learns why a credential was rejected.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/paokel/novelhub/internal/apperr"
)

// Claims carried by an issued token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 tokens for the single admin identity.
type Service struct {
	secret       []byte
	password     string
	passwordHash string // bcrypt; takes precedence over the plain password
	ttl          time.Duration
}

// NewService creates the gate. Exactly one of password/passwordHash is
// expected to be set (config validation enforces this); ttl defaults to 24h.
func NewService(secret, password, passwordHash string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		secret:       []byte(secret),
		password:     password,
		passwordHash: passwordHash,
		ttl:          ttl,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Login checks the admin password and returns a signed token with its
// expiry. A wrong password is apperr.ErrUnauthorized.
func (s *Service) Login(password string) (string, time.Time, error) {
	if password == "" {
		return "", time.Time{}, fmt.Errorf("%w: password is required", apperr.ErrValidation)
	}
	if !s.checkPassword(password) {
		return "", time.Time{}, apperr.ErrUnauthorized
	}

	now := time.Now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate reports whether the credential admits the caller. Malformed,
// expired, and forged tokens all uniformly answer false.
func (s *Service) Validate(credential string) bool {
	tok, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	return err == nil && tok.Valid
}

func (s *Service) checkPassword(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	return password == s.password
}
