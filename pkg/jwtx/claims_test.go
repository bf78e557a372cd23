package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestRequireIdentity(t *testing.T) {
	t.Run("present together", func(t *testing.T) {
		c := NewAccessClaims("42", "customer", "auth-service", time.Minute, time.Now())
		require.NoError(t, c.RequireIdentity())
	})

	t.Run("missing role", func(t *testing.T) {
		c := NewAccessClaims("42", "", "auth-service", time.Minute, time.Now())
		require.ErrorIs(t, c.RequireIdentity(), ErrMissingIdentity)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := NewAccessClaims("", "customer", "auth-service", time.Minute, time.Now())
		require.ErrorIs(t, c.RequireIdentity(), ErrMissingIdentity)
	})
}

func TestValidateIssuer(t *testing.T) {
	c := NewAccessClaims("42", "customer", "auth-service", time.Minute, time.Now())

	require.NoError(t, c.ValidateIssuer("auth-service"))
	require.NoError(t, c.ValidateIssuer("")) // nothing to enforce
	require.ErrorIs(t, c.ValidateIssuer("other"), ErrIssuer)
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Now().UTC()

	t.Run("just expired within leeway", func(t *testing.T) {
		c := Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), ErrExpired)
		require.NoError(t, c.ValidateExpiryWithLeeway(30*time.Second))
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(10 * time.Second)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), ErrNotYetValid)
		require.NoError(t, c.ValidateExpiryWithLeeway(30*time.Second))
	})
}

func TestNewRefreshClaimsCarriesRecordID(t *testing.T) {
	c := NewRefreshClaims("42", "manager", "rec-7", "auth-service", time.Hour, time.Now())
	require.Equal(t, "rec-7", c.ID)
	require.Equal(t, "42", c.Subject)
	require.Equal(t, "manager", c.Role)
}
