package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens are short-lived because they are
// verified statelessly; refresh tokens live long but are revocable via
// their persisted record.
const (
	DefaultAccessTokenTTL  = 1 * time.Hour
	DefaultRefreshTokenTTL = 365 * 24 * time.Hour
)

// Claims are the claims carried by both access and refresh tokens.
// Access tokens carry {sub, role}; refresh tokens additionally use the
// registered "jti" claim for the ID of their persisted store record.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the authenticated user: admin, manager or customer.
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct access token claims.
func NewAccessClaims(subject, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
}

// NewRefreshClaims builds refresh token claims. recordID is the identifier
// of the persisted refresh token row and becomes the "jti" claim, so the
// token and its revocable record can be cross-referenced.
func NewRefreshClaims(subject, role, recordID, issuer string, ttl time.Duration, now time.Time) Claims {
	c := NewAccessClaims(subject, role, issuer, ttl, now)
	c.ID = recordID
	return c
}

// RequireIdentity ensures the sub and role claims are present together.
// A token missing either is invalid regardless of signature validity.
func (c *Claims) RequireIdentity() error {
	if c.Subject == "" || c.Role == "" {
		return ErrMissingIdentity
	}
	return nil
}

// ValidateIssuer checks the issuer claim against the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it becomes valid (nbf).
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
