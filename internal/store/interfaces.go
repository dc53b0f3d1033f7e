package store

import (
	"context"
	"time"

	"github.com/hoshinolab/fortune-gate/models"
)

// IdentityRepository is the persistence contract for the identities table.
// One row per distinct email address; every mutation is a single-row,
// single-statement update keyed by the unique email or token, so no
// cross-row coordination is required.
type IdentityRepository interface {
	// CreateOrReplace inserts a new unverified row for the email, or
	// overwrites the mutable profile fields of an existing one. When
	// resetVerification is true an overwrite also drops the verification,
	// passphrase and token state back to the unverified initial state.
	// CreatedAt is re-stamped on both branches. Never errors on either
	// branch existing.
	CreateOrReplace(ctx context.Context, identity models.Identity, resetVerification bool) (models.Identity, error)

	// FindByEmail returns the row for the email or ErrIdentityNotFound.
	FindByEmail(ctx context.Context, email string) (models.Identity, error)

	// FindByID returns the row for the stable identifier or
	// ErrIdentityNotFound.
	FindByID(ctx context.Context, id string) (models.Identity, error)

	// FindByLoginFactors returns all active, verified rows matching the
	// nickname and birth-date triple, most recently created first. The
	// passphrase factor is compared by the caller against PassphraseHash.
	FindByLoginFactors(ctx context.Context, nickname, birthYear, birthMonth, birthDay string) ([]models.Identity, error)

	// SetVerifyToken stores a freshly issued magic-link token, replacing
	// any outstanding one.
	SetVerifyToken(ctx context.Context, email, token string, issuedAt time.Time) error

	// SetRecoveryToken stores a freshly issued recovery token, replacing
	// any outstanding one and clearing its consumed flag.
	SetRecoveryToken(ctx context.Context, email, token string, issuedAt time.Time) error

	// FindByVerifyToken returns the row holding the outstanding magic-link
	// token or ErrTokenNotFound.
	FindByVerifyToken(ctx context.Context, token string) (models.Identity, error)

	// FindByRecoveryToken returns the row holding the recovery token
	// (consumed or not) or ErrTokenNotFound.
	FindByRecoveryToken(ctx context.Context, token string) (models.Identity, error)

	// ConsumeVerifyToken atomically flips the holder to verified and clears
	// the token in one conditional UPDATE. Zero rows affected yields
	// ErrTokenNotFound, which guarantees at-most-once consumption under
	// concurrent replay.
	ConsumeVerifyToken(ctx context.Context, token string) (models.Identity, error)

	// ConsumeRecoveryToken atomically stores the new passphrase hash and
	// marks the recovery token consumed in one conditional UPDATE. Zero
	// rows affected yields ErrTokenNotFound.
	ConsumeRecoveryToken(ctx context.Context, token, passphraseHash string) (models.Identity, error)

	// ClearVerifyToken discards an outstanding magic-link token without a
	// state transition, used for best-effort expiry cleanup.
	ClearVerifyToken(ctx context.Context, email string) error

	// SetPassphrase overwrites the passphrase hash of a verified identity.
	// Returns ErrIdentityNotVerified when the row exists but is unverified,
	// ErrIdentityNotFound when it does not exist.
	SetPassphrase(ctx context.Context, email, passphraseHash string) error

	// Delete removes the row entirely. Returns ErrIdentityNotFound when
	// absent.
	Delete(ctx context.Context, email string) error

	// List returns every identity row, most recently created first.
	List(ctx context.Context) ([]models.Identity, error)
}
