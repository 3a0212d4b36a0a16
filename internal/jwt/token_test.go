package jwt

import (
	"testing"
	"time"

	domainerrors "mission-dispatch/internal/errors"
)

// --- GenerateToken / ValidateToken ---

func TestToken_Roundtrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken("driver-1", RoleDriver)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != "driver-1" {
		t.Fatalf("expected sub driver-1, got %s", claims.Sub)
	}
	if claims.Role != RoleDriver {
		t.Fatalf("expected role driver, got %s", claims.Role)
	}
}

func TestToken_UnknownRoleRejected(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.GenerateToken("x", "superuser")
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestToken_WrongSecretRejected(t *testing.T) {
	token, err := NewService("secret-a", time.Hour).GenerateToken("client-1", RoleClient)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = NewService("secret-b", time.Hour).ValidateToken(token)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestToken_ExpiredRejected(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, err := svc.GenerateToken("client-1", RoleClient)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestToken_GarbageRejected(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleDriver, RoleClient, RoleAdmin} {
		if !ValidRole(role) {
			t.Fatalf("%s must be valid", role)
		}
	}
	if ValidRole("root") || ValidRole("") {
		t.Fatal("unknown roles must be rejected")
	}
}
