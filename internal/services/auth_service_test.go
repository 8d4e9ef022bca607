package services

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fluxo/internal/testutil"
)

func newTestAuthService(t *testing.T, password string) AuthServicer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return NewAuthService(string(hash), "test-secret", time.Hour)
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestAuthService(t, "s3cret")

	result, err := svc.IssueToken("s3cret")
	testutil.AssertNoError(t, err)
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if time.Until(result.ExpiresAt) <= 0 {
		t.Error("expected expiry in the future")
	}

	claims, err := svc.ValidateToken(result.Token)
	testutil.AssertNoError(t, err)
	if claims.Subject != tokenSubject {
		t.Errorf("expected subject %q, got %q", tokenSubject, claims.Subject)
	}
}

func TestIssueTokenWrongPassword(t *testing.T) {
	svc := newTestAuthService(t, "s3cret")

	_, err := svc.IssueToken("guess")
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

	_, err = svc.IssueToken("")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := newTestAuthService(t, "s3cret")
	result, err := issuer.IssueToken("s3cret")
	testutil.AssertNoError(t, err)

	other := NewAuthService("x", "another-secret", time.Hour)
	_, err = other.ValidateToken(result.Token)
	testutil.AssertAppError(t, err, "UNAUTHORIZED")

	_, err = issuer.ValidateToken("not.a.token")
	testutil.AssertAppError(t, err, "UNAUTHORIZED")
}

func TestAuthDisabled(t *testing.T) {
	svc := NewAuthService("", "secret", time.Hour)
	if svc.Enabled() {
		t.Fatal("expected auth disabled")
	}
	_, err := svc.IssueToken("anything")
	testutil.AssertAppError(t, err, "AUTH_DISABLED")
}
