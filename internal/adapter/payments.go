package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/models"
)

type paymentLinkRequest struct {
	CustomerEmail string `json:"customer_email"`
	PlanKey       string `json:"plan_key"`
}

type paymentLinkResponse struct {
	URL       string    `json:"url"`
	Reference string    `json:"reference"`
	ExpiresAt time.Time `json:"expires_at"`
}

// paymentProvider mints checkout links against the third-party payment
// service.
type paymentProvider struct {
	client *resty.Client
	log    *logger.Logger
}

// NewPaymentProvider builds the checkout collaborator.
func NewPaymentProvider(cfg config.Gateway, log *logger.Logger) PaymentProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &paymentProvider{client: cli, log: log}
}

func (p *paymentProvider) CreatePaymentLink(ctx context.Context, email, planKey string) (models.PaymentLink, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(paymentLinkRequest{CustomerEmail: email, PlanKey: planKey}).
		Post("/v1/payment-links")
	if err != nil {
		return models.PaymentLink{}, fmt.Errorf("%w: create payment link: %v", ErrGatewayUnavailable, err)
	}
	if resp.IsError() {
		p.log.Error().
			Int("status", resp.StatusCode()).
			Str("plan", planKey).
			Msg("payment provider refused the link request")
		return models.PaymentLink{}, fmt.Errorf("%w: http %d", ErrGatewayRejected, resp.StatusCode())
	}

	var body paymentLinkResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.PaymentLink{}, fmt.Errorf("decode payment link response: %w", err)
	}
	if body.URL == "" {
		return models.PaymentLink{}, fmt.Errorf("%w: empty payment link", ErrGatewayRejected)
	}

	return models.PaymentLink{
		URL:       body.URL,
		Reference: body.Reference,
		ExpiresAt: body.ExpiresAt,
	}, nil
}
