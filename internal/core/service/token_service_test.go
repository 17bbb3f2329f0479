package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/employee-portal/employee-api/internal/core/domain"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	caller, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if caller.UserID != "u1" || caller.Role != domain.RoleUser {
		t.Fatalf("unexpected caller %+v", caller)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	issuedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_Tampered(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _ := svc.Issue("u1", domain.RoleUser)

	// Swap the payload for one claiming admin, keeping the original signature.
	forged, _ := NewTokenService("secret", time.Hour).Issue("u1", domain.RoleAdmin)
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _ := NewTokenService("other", time.Hour).Issue("u1", domain.RoleAdmin)

	if _, err := NewTokenService("secret", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	claims := &Claims{
		UserID: "u1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for name, token := range map[string]string{"HS512": hs512, "none": none} {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestTokenService_RequiresExpiryAndClaims(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	sign := func(c *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := map[string]string{
		"no expiry":    sign(&Claims{UserID: "u1", Role: domain.RoleUser}),
		"no user id":   sign(&Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"unknown role": sign(&Claims{UserID: "u1", Role: "root", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"garbage":      "not.a.token",
		"empty":        "",
	}
	for name, token := range cases {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestTokenService_EmptySecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour).Issue("u1", domain.RoleUser); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenService_DefaultTTL(t *testing.T) {
	if svc := NewTokenService("secret", 0); svc.ttl != time.Hour {
		t.Fatalf("expected default ttl of 1h, got %v", svc.ttl)
	}
}
