package service

import (
	"github.com/hoshinolab/fortune-gate/internal/adapter"
	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
)

type Services struct {
	IdentityService IdentityService
	AuthService     AuthService
	AdminService    AdminService
	ConsultService  ConsultService
}

func NewServices(storages store.Storages, adapters *adapter.Adapters, cfg *config.StructuredConfig, logger *logger.Logger) *Services {
	issuer := newTokenIssuer(storages.IdentityRepository, cfg.App, logger.GetChildLogger())

	return &Services{
		IdentityService: NewIdentityService(storages.IdentityRepository, issuer, adapters.Mail, cfg.App, logger.GetChildLogger()),
		AuthService:     NewAuthService(storages.IdentityRepository, logger.GetChildLogger()),
		AdminService:    NewAdminService(storages.IdentityRepository, cfg.Admin, logger.GetChildLogger()),
		ConsultService:  NewConsultService(storages.IdentityRepository, adapters.Oracle, adapters.Payments, logger.GetChildLogger()),
	}
}
