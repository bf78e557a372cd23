package service

import (
	"context"
	"errors"
	"time"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/pkg/idx"
	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// TokenService mints the access/refresh token pair and owns the refresh
// token rotation and revocation lifecycle.
//
// Access tokens are RS256-signed and stateless: any service holding the
// public key can verify them. Refresh tokens are HS256-signed with a secret
// only this service holds, and carry the id of a persisted record, so they
// can be revoked server-side.
type TokenService struct {
	Access     *jwtx.AccessSigner
	Refresh    *jwtx.RefreshSigner
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(u domain.User) (string, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Role.String(), s.Issuer, s.AccessTTL, time.Now().UTC())
	return s.Access.Sign(claims)
}

// IssueRefreshToken signs a refresh token bound to the given persisted
// record. The record must be created first because its id goes into the
// token's jti claim.
func (s *TokenService) IssueRefreshToken(u domain.User, recordID string) (string, error) {
	claims := jwtx.NewRefreshClaims(u.ID, u.Role.String(), recordID, s.Issuer, s.RefreshTTL, time.Now().UTC())
	return s.Refresh.Sign(claims)
}

// PersistRefreshToken creates the revocable store record backing a refresh
// token and returns it so the caller can embed its id when signing.
func (s *TokenService) PersistRefreshToken(ctx context.Context, u domain.User) (domain.RefreshToken, error) {
	record := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return domain.RefreshToken{}, err
	}
	return record, nil
}

// IssuePair mints a fresh access/refresh pair for the user, persisting a
// new refresh record.
func (s *TokenService) IssuePair(ctx context.Context, u domain.User) (domain.TokenPair, error) {
	access, err := s.IssueAccessToken(u)
	if err != nil {
		return domain.TokenPair{}, err
	}

	record, err := s.PersistRefreshToken(ctx, u)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.IssueRefreshToken(u, record.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RotateRefreshToken exchanges a validated refresh token for a new pair,
// invalidating the presented token.
//
// The delete of the old record and the insert of the new one run in a
// single transaction, and the delete fails with ErrNotFound when another
// rotation got there first. Two concurrent rotations with the same token
// therefore yield exactly one new pair.
func (s *TokenService) RotateRefreshToken(ctx context.Context, claims jwtx.Claims) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	// Re-read the user so a role change since issuance shows up in the
	// freshly minted tokens.
	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	access, err := s.IssueAccessToken(u)
	if err != nil {
		return domain.TokenPair{}, err
	}

	newRecord := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(s.RefreshTTL),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().DeleteRefreshToken(ctx, claims.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRecord)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			l.Warn("refresh rotation lost the race or token replayed", "record_id", claims.ID)
		}
		return domain.TokenPair{}, err
	}

	refresh, err := s.IssueRefreshToken(u, newRecord.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RevokeRefreshToken deletes the record backing a refresh token. Deleting
// an already-gone record is not an error; logout is idempotent.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, recordID string) error {
	err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, recordID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// CheckRefreshRecord confirms the record named by a refresh token's jti
// still exists and has not expired. Absence means the token has been
// revoked or rotated away.
func (s *TokenService) CheckRefreshRecord(ctx context.Context, recordID string) error {
	record, err := s.Store.RefreshTokens().GetRefreshTokenByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefresh
		}
		return err
	}
	if record.Expired(time.Now().UTC()) {
		return ErrInvalidRefresh
	}
	return nil
}
