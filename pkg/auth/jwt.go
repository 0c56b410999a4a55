package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// HS256 algorithm for mount token signing
	SigningAlgorithm = "HS256"
	// Default mount token lifetime, matches the default view TTL
	DefaultTokenExpiry = 30 * time.Minute
	// Token type carried by every mount token
	TokenTypeMount = "mount"

	secretLength = 32
)

// ErrInvalidToken is returned for any mount token that fails verification
var ErrInvalidToken = errors.New("invalid mount token")

// MountClaims ties a browser's client-capable pass to the view it mounted
type MountClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// TokenService issues and verifies mount tokens
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a token service with the given HMAC secret
func NewTokenService(issuer string, secret []byte) (*TokenService, error) {
	if len(secret) < secretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes, got %d", secretLength, len(secret))
	}
	return &TokenService{
		secret: secret,
		issuer: issuer,
	}, nil
}

// GenerateSecret returns a random secret for processes started without one
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	return secret, nil
}

// Issue signs a mount token whose jti is the view ID
func (s *TokenService) Issue(viewID string, expiry time.Duration) (string, error) {
	now := time.Now()

	claims := MountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        viewID,
		},
		TokenType: TokenTypeMount,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks a mount token and returns the view ID it was issued for
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &MountClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != SigningAlgorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.TokenType != TokenTypeMount {
		return "", ErrInvalidToken
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}

	return claims.ID, nil
}
