package http

import (
	"net/http"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// SelfHandler returns the authenticated user's own record.
type SelfHandler struct {
	AuthService *service.AuthService
}

func (h *SelfHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "missing access token")
		return
	}

	u, err := h.AuthService.Self(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Warn("self lookup failed", "user_id", userID, "err", err)
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role.String(),
		TenantID:  u.TenantID,
	})
}
