package http

import (
	"net/http"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/pkg/httpx"
)

const (
	accessCookieMaxAge  = 3600     // 1 hour, matches the access token TTL
	refreshCookieMaxAge = 31536000 // 365 days, matches the refresh token TTL
)

// setAuthCookies writes the token pair as HttpOnly cookies. Tokens never
// appear in response bodies.
func setAuthCookies(w http.ResponseWriter, cookieDomain string, pair domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Domain:   cookieDomain,
		MaxAge:   accessCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Domain:   cookieDomain,
		MaxAge:   refreshCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies expires both auth cookies.
func clearAuthCookies(w http.ResponseWriter, cookieDomain string) {
	for _, name := range []string{httpx.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   cookieDomain,
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
