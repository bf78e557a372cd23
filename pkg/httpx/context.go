package httpx

import (
	"context"

	"github.com/slicemenu/auth/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
	CtxKeyClaims ctxKey = "claims"

	// CtxKeyRefreshClaims holds the claims of a validated refresh token,
	// kept separate so logout can see both tokens at once.
	CtxKeyRefreshClaims ctxKey = "refresh_claims"
)

// ContextWithAuth attaches verified access token claims to the context.
func ContextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// ContextWithRefresh attaches verified refresh token claims to the context.
func ContextWithRefresh(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, CtxKeyRefreshClaims, c)
}

// UserIDFromCtx returns the authenticated user id, or "" when unauthenticated.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// RoleFromCtx returns the authenticated role, or "" when unauthenticated.
func RoleFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromCtx returns the full access token claims, if attached.
func ClaimsFromCtx(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// RefreshClaimsFromCtx returns the validated refresh token claims, if attached.
func RefreshClaimsFromCtx(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyRefreshClaims).(jwtx.Claims)
	return c, ok
}
