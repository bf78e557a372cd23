package domain

import "time"

// TokenPair is the signed access/refresh token pair handed to a client
// after registration, login or refresh rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken models the persisted refresh token record. Its ID travels
// inside the signed refresh token as the jti claim; if the row is gone the
// token has been revoked or rotated away, regardless of signature validity.
type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record's expiry has passed.
func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
