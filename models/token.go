package models

import "time"

// TokenKind distinguishes the two single-use token classes the identity
// lifecycle issues. They are stored in independent columns so a stale
// magic-link token can never be consumed by the recovery flow, and each
// kind carries its own time-to-live.
type TokenKind string

const (
	// TokenKindRegistrationLink is the magic-link token emailed after
	// registration to confirm address ownership.
	TokenKindRegistrationLink TokenKind = "registration_link"

	// TokenKindPassphraseRecovery is the token emailed to permit a
	// passphrase reset.
	TokenKindPassphraseRecovery TokenKind = "passphrase_recovery"
)

// TTL returns the maximum age, from issuance, during which a token of this
// kind may be validly consumed. Expiry is enforced at consumption time, not
// at issuance.
func (k TokenKind) TTL() time.Duration {
	switch k {
	case TokenKindPassphraseRecovery:
		return 24 * time.Hour
	default:
		return 30 * time.Minute
	}
}

// IssuedToken is the result of minting a token for an identity. Value is
// the raw token string destined for the emailed link; ExpiresAt is derived
// from IssuedAt and the kind's TTL so callers can surface it without
// re-deriving the policy.
type IssuedToken struct {
	Kind      TokenKind `json:"kind"`
	Value     string    `json:"value"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PaymentLink is the checkout URL minted by the payment provider for a
// purchased consultation plan.
type PaymentLink struct {
	URL       string    `json:"url"`
	Reference string    `json:"reference"`
	ExpiresAt time.Time `json:"expiresAt"`
}
