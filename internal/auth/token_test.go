package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute)

	token, err := svc.IssueAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccessToken() returned empty token")
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.Subject != "admin" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "admin")
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want %q", claims.Role, "admin")
	}
	if claims.Issuer != "vitalscope" {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, "vitalscope")
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), -time.Minute)

	token, err := svc.IssueAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatal("ValidateAccessToken() accepted an expired token")
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-a"), 15*time.Minute)
	verifier := NewTokenService([]byte("secret-b"), 15*time.Minute)

	token, err := issuer.IssueAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}

	if _, err := verifier.ValidateAccessToken(token); err == nil {
		t.Fatal("ValidateAccessToken() accepted a token signed with a different secret")
	}
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), 15*time.Minute)

	for _, bad := range []string{"", "not-a-jwt", strings.Repeat("x", 300)} {
		if _, err := svc.ValidateAccessToken(bad); err == nil {
			t.Errorf("ValidateAccessToken(%q) accepted garbage", bad)
		}
	}
}

func TestHashAndCheckKey(t *testing.T) {
	hash, err := HashKey("collector-key", 4)
	if err != nil {
		t.Fatalf("HashKey() error = %v", err)
	}
	if !CheckKey(hash, "collector-key") {
		t.Error("CheckKey() rejected the correct key")
	}
	if CheckKey(hash, "wrong-key") {
		t.Error("CheckKey() accepted the wrong key")
	}
}
