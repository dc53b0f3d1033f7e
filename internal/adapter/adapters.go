package adapter

import (
	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
)

// NewAdapters builds every outbound collaborator from configuration.
func NewAdapters(cfg config.Gateways, log *logger.Logger) *Adapters {
	return &Adapters{
		Mail:     NewMailGateway(cfg.Mail, log.GetChildLogger()),
		Payments: NewPaymentProvider(cfg.Payments, log.GetChildLogger()),
		Oracle:   NewOracle(cfg.Oracle, log.GetChildLogger()),
	}
}
