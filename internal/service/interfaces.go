package service

import (
	"context"
	"time"

	"github.com/hoshinolab/fortune-gate/models"
)

// IdentityService owns the identity lifecycle: registration, magic-link
// verification, passphrase recovery, and withdrawal.
type IdentityService interface {
	// Register creates or overwrites the profile for the email and returns
	// the resulting row. Re-registering an email may drop it back to the
	// unverified state depending on the configured resubmission policy.
	Register(ctx context.Context, identity models.Identity) (models.Identity, error)

	// RequestVerification saves the profile, issues a fresh magic-link
	// token and asks the mail gateway to deliver it. Returns the link URL
	// and its expiry. Fails with ErrEmailAlreadyRegistered when a verified
	// identity already holds the email.
	RequestVerification(ctx context.Context, identity models.Identity) (link string, expiresAt time.Time, err error)

	// ConsumeVerificationToken exchanges an outstanding magic-link token
	// for the verified state, at most once.
	ConsumeVerificationToken(ctx context.Context, token string) (models.Identity, error)

	// RequestPassphraseRecovery issues and delivers a recovery token when
	// every submitted factor matches a verified identity. Any mismatch is
	// reported as ErrIdentityNotFound without detail.
	RequestPassphraseRecovery(ctx context.Context, req models.RecoveryRequest) error

	// VerifyRecoveryToken is the read-only check the reset form performs
	// before prompting for a new passphrase.
	VerifyRecoveryToken(ctx context.Context, token string) (models.Identity, error)

	// UpdatePassphrase exchanges a recovery token for a passphrase change,
	// at most once.
	UpdatePassphrase(ctx context.Context, token, newPassphrase string) error

	// SetPassphrase stores a passphrase for a verified identity, keyed by
	// email.
	SetPassphrase(ctx context.Context, email, passphrase string) error

	// Withdraw removes the identity row entirely.
	Withdraw(ctx context.Context, email string) error
}

// AuthService validates login attempts.
type AuthService interface {
	// Login matches the five submitted factors against stored state and
	// returns the identity on success. Failures are uniformly
	// ErrAuthenticationFailed.
	Login(ctx context.Context, req models.LoginRequest) (models.Identity, error)
}

// AdminService authenticates the configured administrator and serves the
// identity listing behind it.
type AdminService interface {
	Login(ctx context.Context, login, passphrase string) (token string, err error)
	ParseToken(tokenString string) (login string, err error)
	ListIdentities(ctx context.Context) ([]models.Identity, error)
}

// ConsultService fronts the two paid collaborators: the text-generation
// service and the checkout provider.
type ConsultService interface {
	// Consult generates a personalised reading for the identity behind the
	// session.
	Consult(ctx context.Context, identityID string, req models.ConsultationRequest) (string, error)

	// CreatePaymentLink mints a checkout link for the plan.
	CreatePaymentLink(ctx context.Context, req models.PaymentLinkRequest) (models.PaymentLink, error)
}

// tokenIssuer mints single-use link tokens and persists them on the target
// identity. Internal to the service layer.
type tokenIssuer interface {
	Issue(ctx context.Context, email string, kind models.TokenKind) (models.IssuedToken, error)
}
