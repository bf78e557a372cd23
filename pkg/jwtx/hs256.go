package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinRefreshSecretLen is the minimum accepted HS256 secret length in bytes.
// Anything shorter than the hash output weakens the MAC for no benefit.
const MinRefreshSecretLen = 32

// RefreshSigner signs refresh tokens using HMAC SHA-256 with a shared
// secret. Only the issuing service holds the secret, which pairs with the
// mandatory store lookup to make refresh tokens revocable.
type RefreshSigner struct {
	secret []byte
}

// NewRefreshSigner creates a signer from the shared secret.
func NewRefreshSigner(secret []byte) (*RefreshSigner, error) {
	if len(secret) < MinRefreshSecretLen {
		return nil, errors.New("jwtx: refresh secret too short")
	}
	return &RefreshSigner{secret: secret}, nil
}

func (s *RefreshSigner) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *RefreshSigner) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// RefreshVerifier validates refresh tokens signed with HS256.
//
// Note a valid signature alone is not enough for a refresh token to be
// accepted; callers must also confirm the record named by the jti claim
// still exists in the refresh token store.
type RefreshVerifier struct {
	secret []byte
	issuer string
}

// NewRefreshVerifier creates a verifier for the shared secret and issuer.
func NewRefreshVerifier(secret []byte, issuer string) (*RefreshVerifier, error) {
	if len(secret) < MinRefreshSecretLen {
		return nil, errors.New("jwtx: refresh secret too short")
	}
	return &RefreshVerifier{secret: secret, issuer: issuer}, nil
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *RefreshVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}
	if err := claims.RequireIdentity(); err != nil {
		return Claims{}, err
	}
	if claims.ID == "" {
		// Refresh tokens without a record reference cannot be revoked,
		// so they are not accepted at all.
		return Claims{}, ErrMissingIdentity
	}

	return *claims, nil
}
