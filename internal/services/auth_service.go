package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "fluxo/internal/errors"
)

const (
	tokenIssuer  = "fluxo-api"
	tokenSubject = "operator"
)

// authService authenticates the single operator of the ledger. There are no
// user accounts: a bcrypt hash of the operator password is configured and a
// successful comparison yields a short-lived HS256 token.
type authService struct {
	passwordHash []byte
	secret       []byte
	expiry       time.Duration
	now          func() time.Time
}

// NewAuthService creates a new AuthServicer. An empty passwordHash disables
// authentication.
func NewAuthService(passwordHash, secret string, expiry time.Duration) AuthServicer {
	return &authService{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		expiry:       expiry,
		now:          time.Now,
	}
}

// Enabled reports whether a password hash is configured.
func (s *authService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// IssueToken checks password against the configured hash and signs a token.
func (s *authService) IssueToken(password string) (*TokenResult, error) {
	if !s.Enabled() {
		return nil, apperrors.ErrAuthDisabled
	}
	if password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password is required")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   tokenSubject,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &TokenResult{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses a bearer token and returns its claims.
func (s *authService) ValidateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithSubject(tokenSubject))
	if err != nil || !token.Valid {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, err)
	}
	return claims, nil
}
