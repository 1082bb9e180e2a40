package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("festive-secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("festive-secret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestCreateAndVerifyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-jwt-secret")

	token, err := CreateToken("admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %q", claims.Username)
	}

	if _, err := VerifyToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestOrganizerToken(t *testing.T) {
	t.Setenv("LINK_SECRET", "test-link-secret")

	token := OrganizerToken("SANTA-ABC234")
	if !strings.HasPrefix(token, "SANTA-ABC234.") {
		t.Fatalf("unexpected token format %q", token)
	}

	if err := VerifyOrganizerToken("SANTA-ABC234", token); err != nil {
		t.Errorf("valid token rejected: %v", err)
	}
	if err := VerifyOrganizerToken("SANTA-XYZ789", token); err == nil {
		t.Error("token accepted for a different group")
	}
	if err := VerifyOrganizerToken("SANTA-ABC234", "SANTA-ABC234.deadbeef"); err == nil {
		t.Error("forged signature accepted")
	}
	if err := VerifyOrganizerToken("SANTA-ABC234", "no-separator"); err == nil {
		t.Error("malformed token accepted")
	}
}
