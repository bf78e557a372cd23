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

// BootstrapService seeds the first admin account at startup. Without it a
// fresh deployment has no way to reach the admin-gated routes, since
// registration only ever creates customers.
type BootstrapService struct {
	Store store.Store
}

// SeedAdminParams is the admin account read from startup config.
type SeedAdminParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SeedAdmin creates the configured admin user if no account with that email
// exists yet. It reports whether a user was created. Safe to run on every
// startup; a concurrent replica losing the insert race is treated the same
// as the user already existing.
func (s *BootstrapService) SeedAdmin(ctx context.Context, p SeedAdminParams) (bool, error) {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Users().GetUserByEmail(ctx, p.Email); err == nil {
		l.Info("admin user already exists, skipping seed")
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return false, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Info("admin user already exists, skipping seed")
			return false, nil
		}
		return false, err
	}

	l.Info("admin user created", "user_id", u.ID)
	return true, nil
}
