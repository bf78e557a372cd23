package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/pkg/httpx"
	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	accessVerifier  jwtx.Verifier
	refreshVerifier *jwtx.RefreshVerifier
	accessSigner    *jwtx.AccessSigner
	cookieDomain    string
	buildVersion    string
	startTime       time.Time
	logger          *slog.Logger

	store         store.Store
	TokenService  *service.TokenService
	AuthService   *service.AuthService
	UserService   *service.UserService
	TenantService *service.TenantService
}

func NewRouter(
	accessSigner *jwtx.AccessSigner,
	accessVerifier jwtx.Verifier,
	refreshVerifier *jwtx.RefreshVerifier,
	cookieDomain, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:             http.NewServeMux(),
		accessSigner:    accessSigner,
		accessVerifier:  accessVerifier,
		refreshVerifier: refreshVerifier,
		cookieDomain:    cookieDomain,
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		store:           st,
		logger:          logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTenants()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{AuthService: r.AuthService, CookieDomain: r.cookieDomain}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (credential guessing)
	loginHandler := &LoginHandler{AuthService: r.AuthService, CookieDomain: r.cookieDomain}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /auth/self - requires a valid access token
	selfHandler := &SelfHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /auth/self",
		httpx.Chain(selfHandler,
			httpx.AuthnMiddleware(r.accessVerifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /auth/refresh - refresh token only; the access token may well be
	// expired, which is the whole point of the endpoint
	refreshHandler := &RefreshHandler{TokenService: r.TokenService, CookieDomain: r.cookieDomain}
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(refreshHandler,
			RefreshMiddleware(r.refreshVerifier, r.TokenService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/logout - requires both tokens
	logoutHandler := &LogoutHandler{AuthService: r.AuthService, CookieDomain: r.cookieDomain}
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logoutHandler,
			httpx.AuthnMiddleware(r.accessVerifier),
			RefreshMiddleware(r.refreshVerifier, r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTenants() {
	h := &TenantsHandler{TenantService: r.TenantService}

	adminOnly := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.accessVerifier),
			httpx.RequireAnyRole(domain.RoleAdmin.String()),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	// Reads are public so storefronts can list businesses
	r.Mux.Handle("GET /tenants", httpx.Chain(http.HandlerFunc(h.HandleList), httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("GET /tenants/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), httpx.RateLimitByIP(httpx.LenientLimit)))

	r.Mux.Handle("POST /tenants", adminOnly(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PATCH /tenants/{id}", adminOnly(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /tenants/{id}", adminOnly(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	adminOnly := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.accessVerifier),
			httpx.RequireAnyRole(domain.RoleAdmin.String()),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /users", adminOnly(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /users", adminOnly(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /users/{id}", adminOnly(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /users/{id}", adminOnly(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /users/{id}", adminOnly(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.accessSigner))
}
