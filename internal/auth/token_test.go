package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalogd/internal/rbac"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30*time.Minute)
	sub := rbac.Subject{UserID: 42, Username: "alice", Role: rbac.RoleSupplier}

	raw, expiresAt, err := tm.Issue(sub)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	parsed, err := tm.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, sub, parsed)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }

	raw, _, err := tm.Issue(rbac.Subject{UserID: 1, Username: "bob", Role: rbac.RoleGeneral})
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tm.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Minute)
	verifier := NewTokenManager("secret-b", time.Minute)

	raw, _, err := issuer.Issue(rbac.Subject{UserID: 1, Username: "bob", Role: rbac.RoleGeneral})
	require.NoError(t, err)

	_, err = verifier.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenUnknownRoleRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)

	raw, _, err := tm.Issue(rbac.Subject{UserID: 1, Username: "bob", Role: rbac.Role("superuser")})
	require.NoError(t, err)

	_, err = tm.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbageInput(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)

	_, err := tm.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
