package admin

import (
	"errors"
	"testing"
	"time"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := HashAdminToken("open-sesame")
	if err != nil {
		t.Fatalf("HashAdminToken: %v", err)
	}

	token, exp, err := Login(hash, "open-sesame", "secret", time.Hour)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expected expiry in the future, got %v", exp)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims["role"] != Role {
		t.Errorf("expected role %s, got %v", Role, claims["role"])
	}

	if _, err := ParseToken("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestLoginRejectsBadToken(t *testing.T) {
	hash, err := HashAdminToken("open-sesame")
	if err != nil {
		t.Fatalf("HashAdminToken: %v", err)
	}
	if _, _, err := Login(hash, "guess", "secret", time.Hour); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, _, err := Login("", "open-sesame", "secret", time.Hour); !errors.Is(err, ErrAdminDisabled) {
		t.Errorf("expected ErrAdminDisabled, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, _, err := IssueToken("secret", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseToken("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token rejected, got %v", err)
	}
}
