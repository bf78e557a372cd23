package http

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
)

// UsersHandler exposes admin-managed user CRUD: creating staff accounts
// with an explicit role and tenant, listing, updating and deleting.
type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	TenantID  *string `json:"tenantId"`
}

type updateUserRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role"`
	TenantID  *string `json:"tenantId"`
	Password  string  `json:"password,omitempty"`
}

type userPageResponse struct {
	Users   []userResponse `json:"users"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role.String(),
		TenantID:  u.TenantID,
	}
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "role must be admin, manager or customer")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "firstName and lastName are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "email is not a valid address")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "password must be at least 8 characters")
		return
	}

	u, err := h.UserService.Create(r.Context(), service.CreateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
		TenantID:  req.TenantID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))

	result, err := h.UserService.List(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := userPageResponse{
		Users:   make([]userResponse, 0, len(result.Users)),
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	}
	for _, u := range result.Users {
		out.Users = append(out.Users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "role must be admin, manager or customer")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "firstName and lastName are required")
		return
	}
	if req.Password != "" && len(req.Password) < minPasswordLen {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "password must be at least 8 characters")
		return
	}

	u, err := h.UserService.Update(r.Context(), r.PathValue("id"), service.UpdateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		TenantID:  req.TenantID,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
