// Package jwtx implements the token signing and verification used by the
// auth service: RS256 for access tokens (verifiable by anything holding the
// public key) and HS256 for refresh tokens (verifiable only by this service,
// which also holds the revocation records).
package jwtx

import "errors"

var (
	ErrMalformed       = errors.New("jwtx: malformed token")
	ErrInvalidSig      = errors.New("jwtx: invalid signature")
	ErrIssuer          = errors.New("jwtx: issuer mismatch")
	ErrExpired         = errors.New("jwtx: token expired")
	ErrNotYetValid     = errors.New("jwtx: token not yet valid")
	ErrMissingIdentity = errors.New("jwtx: missing sub or role claim")
)

// Verifier validates a token string and gives back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}
