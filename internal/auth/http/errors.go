package http

import (
	"errors"
	"net/http"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// writeServiceError maps service-layer sentinels onto HTTP responses.
// Anything unrecognised is logged and surfaced as a bare 500 so internals
// never leak to clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest, "email_taken", "email already registered")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "invalid refresh token")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
