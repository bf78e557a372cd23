package httpx

import (
	"net/http"

	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/slicemenu/auth/pkg/slogx"
)

// AccessTokenCookie is the cookie carrying the RS256 access token.
const AccessTokenCookie = "accessToken"

// AuthnMiddleware extracts the access token from its cookie, verifies it and
// attaches the decoded identity claims to the request context. Requests with
// a missing, invalid or expired token are rejected with 401 and the pipeline
// halts.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				WriteError(w, http.StatusUnauthorized, CodeUnauthenticated, "missing access token")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				log.Warn("access token verification failed", "err", err)
				WriteError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithAuth(ctx, claims)))
		})
	}
}
