package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
)

const (
	templateMagicLink    = "magic-link"
	templateRecoveryLink = "recovery-link"
)

type mailMessage struct {
	From      string            `json:"from"`
	To        string            `json:"to"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables"`
}

// mailGateway delivers templated mail through the configured mail API.
type mailGateway struct {
	client *resty.Client
	from   string
	log    *logger.Logger
}

// NewMailGateway builds the mail collaborator. When no base URL is
// configured the returned gateway only logs the links instead of sending
// mail, which keeps local development working without credentials.
func NewMailGateway(cfg config.Mail, log *logger.Logger) MailGateway {
	if cfg.BaseURL == "" {
		log.Warn().Msg("mail gateway base URL not set, links will be logged instead of sent")
		return &loggingMailGateway{log: log}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &mailGateway{client: cli, from: cfg.From, log: log}
}

func (m *mailGateway) DeliverMagicLink(ctx context.Context, recipient, link string, expiresAt time.Time) error {
	return m.send(ctx, recipient, templateMagicLink, link, expiresAt)
}

func (m *mailGateway) DeliverRecoveryLink(ctx context.Context, recipient, link string, expiresAt time.Time) error {
	return m.send(ctx, recipient, templateRecoveryLink, link, expiresAt)
}

func (m *mailGateway) send(ctx context.Context, recipient, template, link string, expiresAt time.Time) error {
	msg := mailMessage{
		From:     m.from,
		To:       recipient,
		Template: template,
		Variables: map[string]string{
			"link":       link,
			"expires_at": expiresAt.UTC().Format(time.RFC3339),
		},
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post("/v1/messages")
	if err != nil {
		return fmt.Errorf("%w: send %s mail: %v", ErrGatewayUnavailable, template, err)
	}
	if resp.IsError() {
		m.log.Error().
			Int("status", resp.StatusCode()).
			Str("template", template).
			Msg("mail gateway refused the message")
		return fmt.Errorf("%w: http %d", ErrGatewayRejected, resp.StatusCode())
	}

	return nil
}

// loggingMailGateway writes the links to the log instead of sending mail.
type loggingMailGateway struct {
	log *logger.Logger
}

func (l *loggingMailGateway) DeliverMagicLink(_ context.Context, recipient, link string, expiresAt time.Time) error {
	l.log.Info().
		Str("to", recipient).
		Str("link", link).
		Time("expires_at", expiresAt).
		Msg("magic link (mail delivery disabled)")
	return nil
}

func (l *loggingMailGateway) DeliverRecoveryLink(_ context.Context, recipient, link string, expiresAt time.Time) error {
	l.log.Info().
		Str("to", recipient).
		Str("link", link).
		Time("expires_at", expiresAt).
		Msg("recovery link (mail delivery disabled)")
	return nil
}
