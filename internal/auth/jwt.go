// Package auth provides bearer-token authentication and password hashing.
//
// AUTHENTICATION FLOW:
//  1. POST /auth/register or /auth/login checks credentials and returns a JWT
//  2. The client keeps the token and sends it on every protected call:
//     Authorization: Bearer <token>
//  3. RequireAuth validates the token, confirms the user still exists and
//     puts the user ID in the request context
//
// Tokens are stateless HS256 JWTs: the subject claim carries the user ID and
// the signature proves the server issued it. Nothing is stored server side,
// so a token stays valid until it expires or the account is deleted.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenLifetime is how long an issued token is accepted.
	TokenLifetime = 30 * 24 * time.Hour

	issuer = "study-cards"
)

// TokenService handles JWT creation and validation with one HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Generate one with: openssl rand -hex 32
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload; "sub" holds the internal user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for userID that expires after TokenLifetime.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, TokenLifetime)
}

// GenerateWithDuration signs a token with a custom lifetime.
// A negative d yields an already-expired token, which tests rely on.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("auth: cannot issue a token without a subject")
	}

	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its subject.
//
// Only HS256 is accepted (jwt.WithValidMethods), which blocks "alg":"none"
// and algorithm confusion. Expiry and issuer are mandatory.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}

	return c.Subject, nil
}

// ErrTokenExpired is returned by Validate for a well-signed but stale token.
var ErrTokenExpired = errors.New("auth: token expired")
