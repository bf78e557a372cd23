package app

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"os"

	"github.com/slicemenu/auth/pkg/jwtx"
)

// Keys bundles the signing material loaded at startup. The raw refresh
// secret is kept so a verifier for the configured issuer can be built.
type Keys struct {
	AccessSigner  *jwtx.AccessSigner
	RefreshSigner *jwtx.RefreshSigner
	refreshSecret []byte
}

// AccessVerifier builds a verifier from the signer's public key.
func (k *Keys) AccessVerifier(issuer string) *jwtx.AccessVerifier {
	return jwtx.NewAccessVerifier(k.AccessSigner.Public(), issuer)
}

// RefreshVerifier builds a verifier over the shared refresh secret.
func (k *Keys) RefreshVerifier(issuer string) (*jwtx.RefreshVerifier, error) {
	return jwtx.NewRefreshVerifier(k.refreshSecret, issuer)
}

// InitAuthKeys loads the RSA signing key and the refresh token secret.
//
// When a key file is configured it must load, otherwise startup fails:
// silently generating a fresh key in production would invalidate every
// outstanding access token. Without configured material an ephemeral key
// and a random secret are generated, which is only useful for development.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	signer, err := initAccessSigner(cfg, logger)
	if err != nil {
		return nil, err
	}

	secret, err := loadRefreshSecret(cfg, logger)
	if err != nil {
		return nil, err
	}

	refresh, err := jwtx.NewRefreshSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh secret: %w", err)
	}

	return &Keys{
		AccessSigner:  signer,
		RefreshSigner: refresh,
		refreshSecret: secret,
	}, nil
}

func initAccessSigner(cfg Config, logger *slog.Logger) (*jwtx.AccessSigner, error) {
	if cfg.PrivateKeyFile != "" {
		pemKey, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		signer, err := jwtx.NewAccessSigner(pemKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		logger.Info("access token signing key loaded", "path", cfg.PrivateKeyFile)
		return signer, nil
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral RSA key: %w", err)
	}
	logger.Warn("no private key configured, generated an ephemeral one; all existing access tokens are now invalid")
	return jwtx.NewAccessSignerFromKey(key), nil
}

func loadRefreshSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.RefreshSecretFile != "" {
		secret, err := os.ReadFile(cfg.RefreshSecretFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read refresh secret file: %w", err)
		}
		logger.Info("refresh token secret loaded", "path", cfg.RefreshSecretFile)
		return secret, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	logger.Warn("no refresh secret configured, generated an ephemeral one; all existing refresh tokens are now invalid")
	return secret, nil
}
