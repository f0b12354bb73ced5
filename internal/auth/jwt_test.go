package auth

import (
	"testing"
	"time"

	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", 24*time.Hour)

	token, exp, err := m.GenerateAccessToken(5, user.RoleDoctor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != 5 || claims.Role != user.RoleDoctor || claims.Subject != "5" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.JTI == "" {
		t.Fatalf("expected jti")
	}
	if !claims.ExpiresAt.Time.Equal(exp.Truncate(time.Second)) {
		t.Fatalf("exp mismatch: %s vs %s", claims.ExpiresAt.Time, exp)
	}
}

func TestManager_RejectsWrongType(t *testing.T) {
	m := NewManager("secret", time.Hour)

	claims := Claims{
		UserID:    1,
		Role:      user.RoleDoctor,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected refresh-typed token to be rejected")
	}
}

func TestManager_RejectsMissingExpiry(t *testing.T) {
	m := NewManager("secret", time.Hour)

	claims := Claims{UserID: 1, Role: user.RoleDoctor, TokenType: tokenTypeAccess}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}

func TestManager_RejectsNoneAlgorithm(t *testing.T) {
	m := NewManager("secret", time.Hour)

	claims := Claims{
		UserID:    1,
		Role:      user.RoleDoctor,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}
