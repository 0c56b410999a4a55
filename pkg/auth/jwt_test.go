package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	secret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("Failed to generate secret: %v", err)
	}

	svc, err := NewTokenService("https://landing.test", secret)
	if err != nil {
		t.Fatalf("Failed to create token service: %v", err)
	}
	return svc
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name      string
		secret    []byte
		wantError bool
	}{
		{
			name:      "32 byte secret",
			secret:    make([]byte, 32),
			wantError: false,
		},
		{
			name:      "short secret",
			secret:    []byte("too-short"),
			wantError: true,
		},
		{
			name:      "empty secret",
			secret:    nil,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService("issuer", tt.secret)
			if (err != nil) != tt.wantError {
				t.Errorf("NewTokenService() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestGenerateSecret_Unique(t *testing.T) {
	a, _ := GenerateSecret()
	b, _ := GenerateSecret()

	if len(a) != secretLength {
		t.Errorf("Expected %d byte secret, got %d", secretLength, len(a))
	}
	if string(a) == string(b) {
		t.Error("Expected distinct secrets")
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Issue("view-123", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	viewID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if viewID != "view-123" {
		t.Errorf("Expected view-123, got %s", viewID)
	}
}

func TestVerify_Rejects(t *testing.T) {
	svc := newTestTokenService(t)
	other := newTestTokenService(t)

	expired, _ := svc.Issue("view-1", -time.Minute)
	foreign, _ := other.Issue("view-1", time.Minute)

	noJTI := jwt.NewWithClaims(jwt.SigningMethodHS256, MountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		TokenType: TokenTypeMount,
	})
	noJTIString, _ := noJTI.SignedString(svc.secret)

	wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, MountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			ID:        "view-1",
		},
		TokenType: "session",
	})
	wrongTypeString, _ := wrongType.SignedString(svc.secret)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, MountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: svc.issuer,
			ID:     "view-1",
		},
		TokenType: TokenTypeMount,
	})
	noExpiryString, _ := noExpiry.SignedString(svc.secret)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, MountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			ID:        "view-1",
		},
		TokenType: TokenTypeMount,
	})
	unsignedString, _ := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "expired", token: expired},
		{name: "signed by another secret", token: foreign},
		{name: "missing jti", token: noJTIString},
		{name: "wrong token type", token: wrongTypeString},
		{name: "missing expiry", token: noExpiryString},
		{name: "alg none", token: unsignedString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
