package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/internal/auth/store/drivers/sqlite"
	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "auth-service"

type testEnv struct {
	store  *sqlite.Store
	tokens *service.TokenService
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	refreshSigner, err := jwtx.NewRefreshSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	tokens := &service.TokenService{
		Access:     jwtx.NewAccessSignerFromKey(key),
		Refresh:    refreshSigner,
		Store:      st,
		Issuer:     testIssuer,
		AccessTTL:  time.Hour,
		RefreshTTL: 365 * 24 * time.Hour,
	}

	return &testEnv{
		store:  st,
		tokens: tokens,
		auth:   &service.AuthService{Store: st, Tokens: tokens},
	}
}

func (e *testEnv) refreshVerifier(t *testing.T) *jwtx.RefreshVerifier {
	t.Helper()
	v, err := jwtx.NewRefreshVerifier([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, pair, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, u.Role)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access := jwtx.NewAccessVerifier(env.tokens.Access.Public(), testIssuer)
	claims, err := access.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "customer", claims.Role)

	_, _, err = env.auth.Login(ctx, "jane@example.com", "hunter22")
	require.NoError(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	}
	_, _, err := env.auth.Register(ctx, p)
	require.NoError(t, err)

	_, _, err = env.auth.Register(ctx, p)
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	_, _, errUnknown := env.auth.Login(ctx, "nobody@example.com", "hunter22")
	_, _, errWrongPass := env.auth.Login(ctx, "jane@example.com", "wrong")

	require.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPass, service.ErrInvalidCredentials)
	require.Equal(t, errUnknown, errWrongPass)
}

func TestRotateRefreshTokenSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, pair, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	claims, err := env.refreshVerifier(t).Verify(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)

	newPair, err := env.tokens.RotateRefreshToken(ctx, claims)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// Replaying the consumed token must fail.
	_, err = env.tokens.RotateRefreshToken(ctx, claims)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)

	// The freshly rotated token still works.
	newClaims, err := env.refreshVerifier(t).Verify(newPair.RefreshToken)
	require.NoError(t, err)
	_, err = env.tokens.RotateRefreshToken(ctx, newClaims)
	require.NoError(t, err)
}

func TestRotateRefreshTokenConcurrentReplaySingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pair, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	claims, err := env.refreshVerifier(t).Verify(pair.RefreshToken)
	require.NoError(t, err)

	const rotations = 8
	errs := make(chan error, rotations)
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(rotations)

	for i := 0; i < rotations; i++ {
		go func() {
			defer done.Done()
			start.Wait()
			_, err := env.tokens.RotateRefreshToken(ctx, claims)
			errs <- err
		}()
	}
	start.Done()
	done.Wait()
	close(errs)

	var succeeded, replayed int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrInvalidRefresh):
			replayed++
		default:
			t.Fatalf("unexpected rotation error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, rotations-1, replayed)
}

func TestRotateRefreshTokenPicksUpRoleChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, pair, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	u.Role = domain.RoleManager
	require.NoError(t, env.store.Users().UpdateUser(ctx, u))

	claims, err := env.refreshVerifier(t).Verify(pair.RefreshToken)
	require.NoError(t, err)

	newPair, err := env.tokens.RotateRefreshToken(ctx, claims)
	require.NoError(t, err)

	access := jwtx.NewAccessVerifier(env.tokens.Access.Public(), testIssuer)
	newClaims, err := access.Verify(newPair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "manager", newClaims.Role)
}

func TestLogoutRevokesRefreshRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pair, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	claims, err := env.refreshVerifier(t).Verify(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, env.tokens.CheckRefreshRecord(ctx, claims.ID))
	require.NoError(t, env.auth.Logout(ctx, claims.ID))
	require.ErrorIs(t, env.tokens.CheckRefreshRecord(ctx, claims.ID), service.ErrInvalidRefresh)

	// Logout is idempotent.
	require.NoError(t, env.auth.Logout(ctx, claims.ID))
}

func TestCheckRefreshRecordRejectsExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, _, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	record := domain.RefreshToken{
		ID:        "expired-record",
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, env.store.RefreshTokens().CreateRefreshToken(ctx, record))

	require.ErrorIs(t, env.tokens.CheckRefreshRecord(ctx, record.ID), service.ErrInvalidRefresh)
}

func TestUserServiceCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := &service.UserService{Store: env.store}
	tenants := &service.TenantService{Store: env.store}

	tenant, err := tenants.Create(ctx, service.TenantParams{Name: "Mario's", Address: "1 Pizza Way"})
	require.NoError(t, err)

	created, err := users.Create(ctx, service.CreateUserParams{
		FirstName: "Max",
		LastName:  "Manager",
		Email:     "max@example.com",
		Password:  "hunter22",
		Role:      domain.RoleManager,
		TenantID:  &tenant.ID,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, created.Role)

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, got.Email)
	require.NotNil(t, got.TenantID)
	require.Equal(t, tenant.ID, *got.TenantID)

	updated, err := users.Update(ctx, created.ID, service.UpdateUserParams{
		FirstName: "Maxine",
		LastName:  "Manager",
		Role:      domain.RoleAdmin,
		TenantID:  nil,
	})
	require.NoError(t, err)
	require.Equal(t, "Maxine", updated.FirstName)
	require.Equal(t, domain.RoleAdmin, updated.Role)
	require.Nil(t, updated.TenantID)

	page, err := users.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Users, 1)

	require.NoError(t, users.Delete(ctx, created.ID))
	_, err = users.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, users.Delete(ctx, created.ID), service.ErrNotFound)
}

func TestAdminPasswordChangeRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := &service.UserService{Store: env.store}

	u, pair, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	claims, err := env.refreshVerifier(t).Verify(pair.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, env.tokens.CheckRefreshRecord(ctx, claims.ID))

	_, err = users.Update(ctx, u.ID, service.UpdateUserParams{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Password:  "newpassword1",
	})
	require.NoError(t, err)

	// The old session's refresh record is gone; new credentials work.
	require.ErrorIs(t, env.tokens.CheckRefreshRecord(ctx, claims.ID), service.ErrInvalidRefresh)
	_, _, err = env.auth.Login(ctx, "jane@example.com", "newpassword1")
	require.NoError(t, err)
	_, _, err = env.auth.Login(ctx, "jane@example.com", "hunter22")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSeedAdminCreatesOnceAndCanLogIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bootstrap := &service.BootstrapService{Store: env.store}

	params := service.SeedAdminParams{
		FirstName: "Root",
		LastName:  "Admin",
		Email:     "admin@example.com",
		Password:  "changeme123",
	}

	created, err := bootstrap.SeedAdmin(ctx, params)
	require.NoError(t, err)
	require.True(t, created)

	// Re-running the seed on a later startup is a no-op.
	created, err = bootstrap.SeedAdmin(ctx, params)
	require.NoError(t, err)
	require.False(t, created)

	page, err := (&service.UserService{Store: env.store}).List(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	u, _, err := env.auth.Login(ctx, "admin@example.com", "changeme123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
}

func TestSeedAdminSkipsExistingAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bootstrap := &service.BootstrapService{Store: env.store}

	u, _, err := env.auth.Register(ctx, service.RegisterParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	created, err := bootstrap.SeedAdmin(ctx, service.SeedAdminParams{
		FirstName: "Root",
		LastName:  "Admin",
		Email:     "jane@example.com",
		Password:  "changeme123",
	})
	require.NoError(t, err)
	require.False(t, created)

	// The existing account keeps its role and password.
	got, err := env.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, got.Role)
	_, _, err = env.auth.Login(ctx, "jane@example.com", "hunter22")
	require.NoError(t, err)
}

func TestTenantServiceCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenants := &service.TenantService{Store: env.store}

	created, err := tenants.Create(ctx, service.TenantParams{Name: "Mario's", Address: "1 Pizza Way"})
	require.NoError(t, err)

	updated, err := tenants.Update(ctx, created.ID, service.TenantParams{Name: "Luigi's", Address: "2 Pasta Rd"})
	require.NoError(t, err)
	require.Equal(t, "Luigi's", updated.Name)

	list, err := tenants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, tenants.Delete(ctx, created.ID))
	_, err = tenants.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}
