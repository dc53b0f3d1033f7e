package http

import (
	"context"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/limiter"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/service"
)

// Pinger is the health probe over the storage backend.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	services *service.Services
	limiter  limiter.Limiter
	db       Pinger

	sessionCookieName string
	sessionTTL        time.Duration
	adminEnabled      bool

	logger *logger.Logger
}

func NewHandler(services *service.Services, lim limiter.Limiter, db Pinger, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:          services,
		limiter:           lim,
		db:                db,
		sessionCookieName: cfg.App.SessionCookieName,
		sessionTTL:        cfg.App.SessionTTL,
		adminEnabled:      cfg.Admin.Enabled(),
		logger:            logger,
	}
}
