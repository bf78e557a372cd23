package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
)

// LoginHandler verifies credentials and sets the auth cookies.
type LoginHandler struct {
	AuthService  *service.AuthService
	CookieDomain string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	TenantID  *string `json:"tenantId,omitempty"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "email and password are required")
		return
	}

	u, pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setAuthCookies(w, h.CookieDomain, pair)
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
