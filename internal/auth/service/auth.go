package service

import (
	"context"
	"errors"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/pkg/cryptox"
	"github.com/slicemenu/auth/pkg/idx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// AuthService orchestrates registration, login and the self lookup on top
// of the user store and the token service.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// RegisterParams is the validated registration payload.
type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a customer account and mints its first token pair.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Users().GetUserByEmail(ctx, p.Email); err == nil {
		return domain.User{}, domain.TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.TokenPair{}, err
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		// The unique index is the authority; the lookup above only gives a
		// friendlier fast path.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.TokenPair{}, ErrEmailTaken
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user registered", "user_id", u.ID)

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	return u, pair, nil
}

// Login verifies credentials and mints a token pair. Unknown emails and
// wrong passwords both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", "user_id", u.ID)
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user logged in", "user_id", u.ID)
	return u, pair, nil
}

// Self returns the authenticated user's record.
func (s *AuthService) Self(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// Logout revokes the refresh record referenced by the presented token.
func (s *AuthService) Logout(ctx context.Context, recordID string) error {
	l := slogx.FromContext(ctx)
	if err := s.Tokens.RevokeRefreshToken(ctx, recordID); err != nil {
		return err
	}
	l.Info("user logged out", "record_id", recordID)
	return nil
}
