package http

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
)

const minPasswordLen = 8

// RegisterHandler creates a customer account and sets the auth cookies.
type RegisterHandler struct {
	AuthService  *service.AuthService
	CookieDomain string
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type registerResponse struct {
	ID string `json:"id"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}

	if msg, ok := validateRegister(&req); !ok {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	u, pair, err := h.AuthService.Register(r.Context(), service.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setAuthCookies(w, h.CookieDomain, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, registerResponse{ID: u.ID})
}

func validateRegister(req *registerRequest) (string, bool) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case req.FirstName == "":
		return "firstName is required", false
	case req.LastName == "":
		return "lastName is required", false
	case req.Email == "":
		return "email is required", false
	case len(req.Password) < minPasswordLen:
		return "password must be at least 8 characters", false
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is not a valid address", false
	}
	return "", true
}
