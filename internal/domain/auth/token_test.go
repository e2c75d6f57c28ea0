package auth

import (
	"strings"
	"testing"
	"time"

	"inventory-server-go/internal/platform/errors"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-signing-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	return issuer
}

func TestTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	set, err := issuer.Issue(7, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if set.AccessToken == "" || set.IdentityToken == "" || set.RefreshToken == "" {
		t.Fatalf("expected all three tokens, got %+v", set)
	}
	if set.RefreshJTI == "" {
		t.Fatalf("expected refresh jti")
	}
	if set.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expires_in: %d", set.ExpiresIn)
	}

	access, err := issuer.VerifyAccess(set.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if access.AccountID != 7 || access.Username != "alice" {
		t.Fatalf("unexpected access claims: %+v", access)
	}
	if access.JTI == "" {
		t.Fatalf("expected access jti claim")
	}

	identity, err := issuer.VerifyIdentity(set.IdentityToken)
	if err != nil {
		t.Fatalf("VerifyIdentity error: %v", err)
	}
	if identity.Email != "alice@example.com" {
		t.Fatalf("expected email claim on identity token: %+v", identity)
	}

	refresh, err := issuer.VerifyRefresh(set.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh error: %v", err)
	}
	if refresh.JTI != set.RefreshJTI {
		t.Fatalf("refresh jti mismatch: claim %s, set %s", refresh.JTI, set.RefreshJTI)
	}
}

func TestTokenIssuerRejectsTypeMismatch(t *testing.T) {
	issuer := newTestIssuer(t)

	set, err := issuer.Issue(1, "bob", "")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := issuer.VerifyRefresh(set.AccessToken); err == nil {
		t.Fatalf("expected access token to fail refresh verification")
	} else if !errors.IsKind(err, errors.KindAuth) {
		t.Fatalf("expected auth kind, got %v", err)
	}

	if _, err := issuer.VerifyAccess(set.RefreshToken); err == nil {
		t.Fatalf("expected refresh token to fail access verification")
	}
}

func TestTokenIssuerRejectsTampering(t *testing.T) {
	issuer := newTestIssuer(t)

	set, err := issuer.Issue(1, "bob", "")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tampered := set.AccessToken[:len(set.AccessToken)-2] + "xx"
	if _, err := issuer.VerifyAccess(tampered); err == nil {
		t.Fatalf("expected tampered token to fail")
	}

	other, err := NewTokenIssuer("a-different-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	if _, err := other.VerifyAccess(set.AccessToken); err == nil {
		t.Fatalf("expected cross-secret verification to fail")
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := newTestIssuer(t).WithAccessTTL(time.Millisecond)

	set, err := issuer.Issue(1, "bob", "")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	_, err = issuer.VerifyAccess(set.AccessToken)
	if err == nil {
		t.Fatalf("expected expired token to fail")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}
