package http

import (
	"context"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
)

// session requires a login session cookie and stores the identity's stable
// identifier in the request context. The cookie value is the identifier
// itself; downstream handlers resolve it against the store, so a forged or
// stale value still ends in 404 there.
func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		cookie, err := r.Cookie(h.sessionCookieName)
		if err != nil || cookie.Value == "" {
			log.Warn().Msg("missing session cookie")
			writeErrorMessage(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.IdentityIDCtxKey, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
