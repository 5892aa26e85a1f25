package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m, err := NewManager("secret", "issuer", 15*time.Minute)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "admin@voicenexus.ai", RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(tok, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "admin@voicenexus.ai" || claims.Role != RoleAdmin || claims.Issuer != "issuer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager("secret", "", time.Minute)
	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "u", RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now.Add(10*time.Minute)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	a, _ := NewManager("secret-a", "", time.Minute)
	b, _ := NewManager("secret-b", "", time.Minute)
	now := time.Now()
	tok, _ := a.Issue(now, "u", RoleAdmin)
	if _, err := b.Verify(tok, now); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("", "", time.Minute); err == nil {
		t.Fatalf("expected error without secret")
	}
}
