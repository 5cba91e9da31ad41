package server

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	a, err := NewAuth()
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}

	token, err := a.IssueToken("u1", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, name, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id != "u1" || name != "Alice" {
		t.Errorf("claims = %q/%q, want u1/Alice", id, name)
	}
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	a1, _ := NewAuth()
	a2, _ := NewAuth()

	token, err := a1.IssueToken("u1", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := a2.ValidateToken(token); err == nil {
		t.Error("token validated against a foreign secret")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	a, _ := NewAuth()
	if _, _, err := a.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}
}
