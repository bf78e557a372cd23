package http

import (
	"net/http"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
)

// LogoutHandler revokes the presented refresh token's record and expires
// both auth cookies. Runs behind both the authn and refresh middlewares.
type LogoutHandler struct {
	AuthService  *service.AuthService
	CookieDomain string
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.RefreshClaimsFromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "missing refresh token")
		return
	}

	if err := h.AuthService.Logout(r.Context(), claims.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearAuthCookies(w, h.CookieDomain)
	w.WriteHeader(http.StatusNoContent)
}
