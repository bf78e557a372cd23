package store

import (
	"context"
	"errors"

	"github.com/slicemenu/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable; the services depend only on this interface, so tests
// run against an in-memory sqlite database.
type Store interface {
	Users() Users
	Tenants() Tenants
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step operations that must be atomic
	// (e.g. refresh rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and registration conflict checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateUser mutates name, password hash, role and tenant association,
	// bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser cascades to refresh_tokens (per schema).
	DeleteUser(ctx context.Context, id string) error

	// ListUsers returns a page of users ordered by id (= creation order).
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// CountUsers returns the total number of users, for pagination.
	CountUsers(ctx context.Context) (int, error)
}

type Tenants interface {
	// CreateTenant inserts a new tenant (id is ULID).
	CreateTenant(ctx context.Context, t domain.Tenant) error

	// GetTenantByID returns a tenant by id.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// ListTenants returns all tenants ordered by creation.
	ListTenants(ctx context.Context) ([]domain.Tenant, error)

	// UpdateTenant mutates name and address, bumps updated_at.
	UpdateTenant(ctx context.Context, t domain.Tenant) error

	// DeleteTenant removes a tenant; users referencing it keep a null tenant.
	DeleteTenant(ctx context.Context, id string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByID returns the record referenced by a token's jti.
	GetRefreshTokenByID(ctx context.Context, id string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes one record. It reports ErrNotFound when no
	// row was deleted, which is what makes rotation single-use under
	// concurrent replay: two racing rotations both read the row, but only
	// the first delete succeeds.
	DeleteRefreshToken(ctx context.Context, id string) error

	// DeleteUserRefreshTokens bulk-revokes every token of one user.
	DeleteUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping for rows past expires_at.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}
