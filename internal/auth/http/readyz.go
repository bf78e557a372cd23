package http

import (
	"net/http"
	"time"

	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/pkg/httpx"
	"github.com/slicemenu/auth/pkg/jwtx"
)

// ReadyzHandler is the readiness probe. It checks database connectivity
// and that the access token signing key is usable.
func ReadyzHandler(startTime time.Time, version string, st store.Store, signer *jwtx.AccessSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if err := signer.Validate(); err != nil {
			checks.Signer = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, healthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
