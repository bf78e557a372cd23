package http

import (
	"errors"
	"net/http"

	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/pkg/httpx"
	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// RefreshTokenCookie is the cookie carrying the long-lived refresh token.
const RefreshTokenCookie = "refreshToken"

// RefreshMiddleware validates the refresh token cookie: the HS256 signature
// and claims first, then the persisted record the token's jti points at.
// A token whose record is gone has been revoked or already rotated, and is
// rejected even though its signature still verifies.
//
// It lives here rather than in pkg/httpx because the record check needs the
// token service.
func RefreshMiddleware(v *jwtx.RefreshVerifier, tokens *service.TokenService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(RefreshTokenCookie)
			if err != nil || cookie.Value == "" {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "missing refresh token")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				log.Info("refresh token rejected", "err", err)
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "invalid refresh token")
				return
			}

			if err := tokens.CheckRefreshRecord(ctx, claims.ID); err != nil {
				if errors.Is(err, service.ErrInvalidRefresh) {
					log.Info("refresh record revoked or rotated", "record_id", claims.ID)
					httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "invalid refresh token")
					return
				}
				log.Error("refresh record lookup failed", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(httpx.ContextWithRefresh(ctx, claims)))
		})
	}
}
