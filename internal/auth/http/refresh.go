package http

import (
	"net/http"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
)

// RefreshHandler rotates the refresh token attached by RefreshMiddleware:
// it mints a new pair, deletes the presented token's record, and sets
// fresh cookies.
type RefreshHandler struct {
	TokenService *service.TokenService
	CookieDomain string
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.RefreshClaimsFromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "missing refresh token")
		return
	}

	pair, err := h.TokenService.RotateRefreshToken(r.Context(), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setAuthCookies(w, h.CookieDomain, pair)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
