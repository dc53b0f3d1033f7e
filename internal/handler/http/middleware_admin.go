package http

import (
	"context"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
)

// adminAuth enforces the admin bearer token. On success the admin login is
// stored in the request context.
func (h *Handler) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			writeErrorMessage(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			writeErrorMessage(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		login, err := h.services.AdminService.ParseToken(tokenString)
		if err != nil {
			log.Err(err).Msg("admin token rejected")
			writeErrorMessage(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.AdminLoginCtxKey, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
