package http

import (
	"net"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
)

// withRateLimit throttles credential-guessing endpoints per client address.
// The limiter is a pass-through unless Redis is configured.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientAddress(r)

		if !h.limiter.Allow(r.Context(), key) {
			logger.FromRequest(r).Warn().Str("client", key).Msg("rate limit exceeded")
			writeErrorMessage(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
