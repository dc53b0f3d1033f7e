package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// identity lifecycle, no session required
	router.Group(func(r chi.Router) {
		r.Post("/api/register", h.register)
		r.Post("/api/send-magic-link", h.sendMagicLink)
		r.Get("/api/verify-magic-link", h.verifyMagicLink)
		r.Post("/api/set-passphrase", h.setPassphrase)
		r.Post("/api/verify-recovery-token", h.verifyRecoveryToken)
		r.Post("/api/update-passphrase", h.updatePassphrase)
		r.Post("/api/withdraw", h.withdraw)
		r.Post("/api/payment-link", h.paymentLink)
		r.Get("/api/health", h.health)
	})

	// credential checks, optionally rate limited
	router.Group(func(r chi.Router) {
		r.Use(h.withRateLimit)
		r.Post("/api/login", h.login)
		r.Post("/api/passphrase-recovery", h.passphraseRecovery)
	})

	// session required
	router.Group(func(r chi.Router) {
		r.Use(h.session)
		r.Post("/api/consultation", h.consultation)
	})

	if h.adminEnabled {
		router.Post("/api/admin/login", h.adminLogin)
		router.Group(func(r chi.Router) {
			r.Use(h.adminAuth)
			r.Get("/api/admin/identities", h.adminIdentities)
		})
	}

	return router
}
