// Package adapter holds the outbound HTTP collaborators of the application:
// the templated-email sender, the third-party checkout provider, and the
// hosted text-generation service behind the consultation endpoint.
//
// Each collaborator is exposed through a small interface so the service
// layer can be tested against stubs, and implemented with a resty client
// bound to a base URL, API key, and per-call timeout from configuration.
package adapter

import (
	"context"
	"time"

	"github.com/hoshinolab/fortune-gate/models"
)

// MailGateway delivers lifecycle email. The core only depends on this
// contract; the transport (mail API, SMTP relay, log sink) is an
// implementation concern.
type MailGateway interface {
	// DeliverMagicLink sends the registration magic link to the recipient.
	DeliverMagicLink(ctx context.Context, recipient, link string, expiresAt time.Time) error

	// DeliverRecoveryLink sends the passphrase-recovery link to the
	// recipient.
	DeliverRecoveryLink(ctx context.Context, recipient, link string, expiresAt time.Time) error
}

// PaymentProvider mints checkout links against the third-party payment
// service.
type PaymentProvider interface {
	CreatePaymentLink(ctx context.Context, email, planKey string) (models.PaymentLink, error)
}

// ReadingRequest carries the personalisation fields forwarded to the
// text-generation service. The prompt assembled from them is opaque to the
// rest of the application.
type ReadingRequest struct {
	Nickname     string
	GuardianName string
	Topic        string
	Question     string
}

// Oracle generates consultation text via the hosted language model.
type Oracle interface {
	GenerateReading(ctx context.Context, req ReadingRequest) (string, error)
}

// Adapters aggregates the constructed collaborators for wiring.
type Adapters struct {
	Mail     MailGateway
	Payments PaymentProvider
	Oracle   Oracle
}
