package http_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authhttp "github.com/slicemenu/auth/internal/auth/http"
	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/internal/auth/store/drivers/sqlite"
	"github.com/slicemenu/auth/pkg/httpx"
	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "auth-service"
	testDomain = "localhost"
)

type testServer struct {
	router *authhttp.Router
	tokens *service.TokenService
	store  *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := jwtx.NewAccessSignerFromKey(key)

	secret := []byte("0123456789abcdef0123456789abcdef")
	refreshSigner, err := jwtx.NewRefreshSigner(secret)
	require.NoError(t, err)
	refreshVerifier, err := jwtx.NewRefreshVerifier(secret, testIssuer)
	require.NoError(t, err)

	tokens := &service.TokenService{
		Access:     signer,
		Refresh:    refreshSigner,
		Store:      st,
		Issuer:     testIssuer,
		AccessTTL:  time.Hour,
		RefreshTTL: 365 * 24 * time.Hour,
	}

	router := authhttp.NewRouter(
		signer,
		jwtx.NewAccessVerifier(signer.Public(), testIssuer),
		refreshVerifier,
		testDomain,
		"test",
		st,
		slog.Default(),
	)
	router.TokenService = tokens
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	router.UserService = &service.UserService{Store: st}
	router.TenantService = &service.TenantService{Store: st}
	router.ApplyRoutes()

	return &testServer{router: router, tokens: tokens, store: st}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func registerUser(t *testing.T, s *testServer, email string) (access, refresh *http.Cookie, userID string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"firstName": "John",
		"lastName":  "Doe",
		"email":     email,
		"password":  "johndoe1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)

	return cookieByName(t, rec, httpx.AccessTokenCookie),
		cookieByName(t, rec, authhttp.RefreshTokenCookie),
		resp.ID
}

func TestRegisterSetsCookiesAndCreatesCustomer(t *testing.T) {
	s := newTestServer(t)

	access, refresh, userID := registerUser(t, s, "johndoe@gmail.com")

	require.True(t, access.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, access.SameSite)
	require.Equal(t, 3600, access.MaxAge)
	require.True(t, refresh.HttpOnly)
	require.Equal(t, 31536000, refresh.MaxAge)

	rec := s.do(t, http.MethodGet, "/auth/self", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)

	var self struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &self))
	require.Equal(t, userID, self.ID)
	require.Equal(t, "customer", self.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	registerUser(t, s, "johndoe@gmail.com")

	rec := s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"firstName": "John",
		"lastName":  "Doe",
		"email":     "johndoe@gmail.com",
		"password":  "johndoe1234",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email_taken")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing first name", map[string]string{"lastName": "Doe", "email": "a@b.com", "password": "johndoe1234"}},
		{"bad email", map[string]string{"firstName": "John", "lastName": "Doe", "email": "not-an-email", "password": "johndoe1234"}},
		{"short password", map[string]string{"firstName": "John", "lastName": "Doe", "email": "a@b.com", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/auth/register", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), "validation_failed")
		})
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookIdentical(t *testing.T) {
	s := newTestServer(t)

	registerUser(t, s, "johndoe@gmail.com")

	wrongPass := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "johndoe@gmail.com", "password": "wrongpassword",
	})
	unknown := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "nobody@gmail.com", "password": "johndoe1234",
	})

	require.Equal(t, http.StatusBadRequest, wrongPass.Code)
	require.Equal(t, http.StatusBadRequest, unknown.Code)
	require.Equal(t, wrongPass.Body.String(), unknown.Body.String())
}

func TestSelfWithoutTokenRejected(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/auth/self", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	s := newTestServer(t)

	_, refresh, _ := registerUser(t, s, "johndoe@gmail.com")

	first := s.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusNoContent, first.Code)
	newRefresh := cookieByName(t, first, authhttp.RefreshTokenCookie)
	require.NotEqual(t, refresh.Value, newRefresh.Value)

	// The original token's backing record is gone.
	replay := s.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, replay.Code)

	// The rotated token keeps working.
	again := s.do(t, http.MethodPost, "/auth/refresh", nil, newRefresh)
	require.Equal(t, http.StatusNoContent, again.Code)
}

func TestLogoutClearsCookiesAndRevokes(t *testing.T) {
	s := newTestServer(t)

	access, refresh, _ := registerUser(t, s, "johndoe@gmail.com")

	rec := s.do(t, http.MethodPost, "/auth/logout", nil, access, refresh)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, name := range []string{httpx.AccessTokenCookie, authhttp.RefreshTokenCookie} {
		c := cookieByName(t, rec, name)
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge)
	}

	// The revoked refresh token no longer rotates.
	replay := s.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, replay.Code)
}

func adminCookie(t *testing.T, s *testServer) *http.Cookie {
	t.Helper()

	_, _, id := registerUser(t, s, "admin@example.com")

	u, err := s.store.Users().GetUserByID(t.Context(), id)
	require.NoError(t, err)
	u.Role = "admin"
	require.NoError(t, s.store.Users().UpdateUser(t.Context(), u))

	// Re-login so the access token carries the promoted role.
	rec := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "admin@example.com", "password": "johndoe1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return cookieByName(t, rec, httpx.AccessTokenCookie)
}

func TestTenantRoutesRoleGated(t *testing.T) {
	s := newTestServer(t)

	customer, _, _ := registerUser(t, s, "customer@example.com")
	admin := adminCookie(t, s)

	body := map[string]string{"name": "Mario's", "address": "1 Pizza Way"}

	// Customer may not create tenants.
	rec := s.do(t, http.MethodPost, "/tenants", body, customer)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Unauthenticated may not either.
	rec = s.do(t, http.MethodPost, "/tenants", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Admin may.
	rec = s.do(t, http.MethodPost, "/tenants", body, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Reads are public.
	rec = s.do(t, http.MethodGet, "/tenants/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/tenants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUserRoutesAdminOnly(t *testing.T) {
	s := newTestServer(t)

	customer, _, _ := registerUser(t, s, "customer@example.com")
	admin := adminCookie(t, s)

	rec := s.do(t, http.MethodGet, "/users", nil, customer)
	require.Equal(t, http.StatusForbidden, rec.Code)

	body := map[string]any{
		"firstName": "Max",
		"lastName":  "Manager",
		"email":     "max@example.com",
		"password":  "maxmanager1",
		"role":      "manager",
	}
	rec = s.do(t, http.MethodPost, "/users", body, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "manager", created.Role)

	rec = s.do(t, http.MethodGet, "/users", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/"+created.ID, nil, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+created.ID, nil, admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLivezAndReadyz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = s.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"database":"ok"`)
}
