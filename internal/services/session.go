package services

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/apperrors"

	"github.com/dgrijalva/jwt-go"
)

// DefaultSessionTTL is how long an issued token stays valid unless configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken is returned for malformed, tampered or unsigned tokens.
	ErrInvalidToken = apperrors.Unauthorized("Invalid token.")
	// ErrExpiredToken is returned once a token is past its expiry.
	ErrExpiredToken = apperrors.Unauthorized("Token expired.")
)

type sessionClaims struct {
	UserID string `json:"id"`
	jwt.StandardClaims
}

// SessionIssuer issues and verifies stateless HS256 session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates a SessionIssuer. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token binding userID until now+TTL.
func (s *SessionIssuer) Issue(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// user id it carries.
func (s *SessionIssuer) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
