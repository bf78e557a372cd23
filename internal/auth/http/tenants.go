package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
)

// TenantsHandler exposes tenant CRUD. Reads are public; mutations are
// admin-only (gated in the router).
type TenantsHandler struct {
	TenantService *service.TenantService
}

type tenantRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type tenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTenantResponse(t domain.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Address:   t.Address,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (h *TenantsHandler) decode(w http.ResponseWriter, r *http.Request) (tenantRequest, bool) {
	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "name is required")
		return req, false
	}
	return req, true
}

func (h *TenantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	t, err := h.TenantService.Create(r.Context(), service.TenantParams{Name: req.Name, Address: req.Address})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTenantResponse(t))
}

func (h *TenantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.TenantService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *TenantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.TenantService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

func (h *TenantsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	t, err := h.TenantService.Update(r.Context(), r.PathValue("id"), service.TenantParams{Name: req.Name, Address: req.Address})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

func (h *TenantsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.TenantService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
