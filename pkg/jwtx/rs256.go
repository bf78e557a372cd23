package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessSigner signs access tokens using RSA SHA-256.
type AccessSigner struct {
	key *rsa.PrivateKey
}

// NewAccessSigner loads an RSA private key from PEM bytes. Handles both
// PKCS1 and PKCS8 because otherwise we will be chasing a bug for longer
// than we would be willing to admit.
func NewAccessSigner(pemKey []byte) (*AccessSigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA key")
	}

	var key *rsa.PrivateKey
	var err error

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		priv, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err2 != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err2)
		}
		rk, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not RSA private key")
		}
		key = rk
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("jwtx: parse RSA key: %w", err)
	}

	return NewAccessSignerFromKey(key), nil
}

// NewAccessSignerFromKey wraps an already-parsed RSA private key.
func NewAccessSignerFromKey(key *rsa.PrivateKey) *AccessSigner {
	return &AccessSigner{key: key}
}

func (s *AccessSigner) Alg() string { return jwt.SigningMethodRS256.Alg() }

// Public returns the verification half of the signing key.
func (s *AccessSigner) Public() *rsa.PublicKey { return &s.key.PublicKey }

// Sign takes your claims and turns them into a signed JWT string.
func (s *AccessSigner) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *AccessSigner) Validate() error {
	if s.key == nil {
		return errors.New("jwtx: nil RSA key")
	}
	return nil
}

// AccessVerifier validates access tokens signed with RS256.
type AccessVerifier struct {
	pub    *rsa.PublicKey
	issuer string
}

// NewAccessVerifier creates a verifier for the given public key and issuer.
func NewAccessVerifier(pub *rsa.PublicKey, issuer string) *AccessVerifier {
	return &AccessVerifier{pub: pub, issuer: issuer}
}

// NewAccessVerifierPEM parses an RSA public key from PEM bytes (PKIX or
// PKCS1 form) and returns a verifier for it.
func NewAccessVerifierPEM(pemKey []byte, issuer string) (*AccessVerifier, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA public key")
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKIX public key: %w", err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("jwtx: not RSA public key")
		}
		return NewAccessVerifier(rsaPub, issuer), nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS1 public key: %w", err)
		}
		return NewAccessVerifier(pub, issuer), nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *AccessVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.pub, nil
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

	return *claims, nil
}

// mapParseError folds the library's parse errors into our sentinels so
// callers can use errors.Is without importing golang-jwt.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
