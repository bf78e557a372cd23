package httpx

import "net/http"

// RequireAnyRole gates a handler on the role attached by AuthnMiddleware.
// The caller must have one of the listed roles. Must run after
// AuthnMiddleware; if no claims were attached this fails closed with 403.
func RequireAnyRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromCtx(r.Context())
			if _, ok := want[role]; !ok {
				WriteError(w, http.StatusForbidden, CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
