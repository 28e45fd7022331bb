package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"doc-portal/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  720 * time.Hour,
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	m := newTestManager()

	token, expiresAt, err := m.GenerateToken("acc-1", "s1001", "student")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.AccountID != "acc-1" {
		t.Errorf("expected AccountID=acc-1, got %s", claims.AccountID)
	}
	if claims.UserID != "s1001" {
		t.Errorf("expected UserID=s1001, got %s", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("expected Role=student, got %s", claims.Role)
	}
	if claims.Issuer != "doc-portal" {
		t.Errorf("expected Issuer=doc-portal, got %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI must not be empty")
	}

	ttl := time.Until(expiresAt)
	if ttl < 29*24*time.Hour || ttl > 31*24*time.Hour {
		t.Errorf("expected ~30 day validity, got %v", ttl)
	}
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	m := newTestManager()

	t1, _, _ := m.GenerateToken("acc-1", "s1001", "student")
	t2, _, _ := m.GenerateToken("acc-1", "s1001", "student")

	c1, _ := m.ParseToken(t1)
	c2, _ := m.ParseToken(t2)
	if c1.ID == c2.ID {
		t.Error("each token must carry a distinct JTI")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret: "different-secret-key",
		TokenTTL:  time.Hour,
	})

	token, _, _ := m1.GenerateToken("acc-1", "s1001", "student")
	if _, err := m2.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("token signed with another secret should be invalid, got %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := newTestManager()
	token, _, _ := m.GenerateToken("acc-1", "s1001", "student")

	// 31 days later
	m.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager()

	claims := Claims{
		AccountID: "acc-1",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "doc-portal",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims)
	signed, err := token.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := m.ParseToken(signed); err != ErrTokenInvalid {
		t.Errorf("unsigned token must be rejected, got %v", err)
	}
}
