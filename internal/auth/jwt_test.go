package auth

import (
	"testing"
	"time"
)

func TestCreateAndParse(t *testing.T) {
	token, err := CreateAccessToken("secret", "42", RoleAdmin, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	c, err := ParseValidate("secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if c.Sub != "42" || c.Role != RoleAdmin || c.Email != "admin@example.com" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, err := CreateAccessToken("secret", "42", RoleAdmin, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := ParseValidate("other", token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseExpired(t *testing.T) {
	token, err := CreateAccessToken("secret", "42", RoleAdmin, "admin@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := ParseValidate("secret", token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := ParseValidate("secret", "not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
