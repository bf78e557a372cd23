package service

import (
	"context"
	"errors"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/pkg/cryptox"
	"github.com/slicemenu/auth/pkg/idx"
)

// UserService is the admin-facing user management: creating managers for a
// tenant, listing, updating and deleting accounts.
type UserService struct {
	Store store.Store
}

// CreateUserParams is the validated admin user-creation payload.
type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
	TenantID  *string
}

// UpdateUserParams is the validated admin user-update payload. Password is
// optional; when set the user's outstanding refresh tokens are revoked so
// every other session has to log in again.
type UpdateUserParams struct {
	FirstName string
	LastName  string
	Role      domain.Role
	TenantID  *string
	Password  string
}

// UserPage is one page of the paginated user listing.
type UserPage struct {
	Users   []domain.User
	Total   int
	Page    int
	PerPage int
}

func (s *UserService) Create(ctx context.Context, p CreateUserParams) (domain.User, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         p.Role,
		TenantID:     p.TenantID,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return u, nil
}

func (s *UserService) List(ctx context.Context, page, perPage int) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	users, err := s.Store.Users().ListUsers(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return UserPage{}, err
	}

	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return UserPage{}, err
	}

	return UserPage{Users: users, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, p UpdateUserParams) (domain.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Role = p.Role
	u.TenantID = p.TenantID

	if p.Password == "" {
		if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.User{}, ErrNotFound
			}
			return domain.User{}, err
		}
		return u, nil
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = hash

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return err
		}
		return tx.RefreshTokens().DeleteUserRefreshTokens(ctx, u.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// Delete removes a user. Their refresh tokens go with them (FK cascade),
// so any outstanding sessions die immediately.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
