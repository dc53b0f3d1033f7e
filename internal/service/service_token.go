package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

// linkTokenIssuer mints single-use link tokens backed by the identity
// repository. Issuing overwrites any outstanding token of the same kind,
// so at most one token per kind is live for an identity at a time; the
// previous one becomes unconsumable the moment its column is replaced.
type linkTokenIssuer struct {
	repository  store.IdentityRepository
	linkTTL     time.Duration
	recoveryTTL time.Duration
	logger      *logger.Logger

	// now is swappable in tests.
	now func() time.Time
}

// newTokenIssuer wires the issuer with the configured TTLs. Zero TTLs fall
// back to the per-kind defaults.
func newTokenIssuer(repository store.IdentityRepository, cfg config.App, logger *logger.Logger) *linkTokenIssuer {
	return &linkTokenIssuer{
		repository:  repository,
		linkTTL:     cfg.LinkTokenTTL,
		recoveryTTL: cfg.RecoveryTokenTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// Issue generates a fresh token for the identity and stores it with the
// issuance timestamp. TTL is enforced at consumption time, not here.
func (t *linkTokenIssuer) Issue(ctx context.Context, email string, kind models.TokenKind) (models.IssuedToken, error) {
	log := logger.FromContext(ctx)

	value, err := utils.GenerateLinkToken()
	if err != nil {
		log.Err(err).Msg("token generation failed")
		return models.IssuedToken{}, fmt.Errorf("token generation failed: %w", err)
	}

	issuedAt := t.now().UTC()
	switch kind {
	case models.TokenKindPassphraseRecovery:
		err = t.repository.SetRecoveryToken(ctx, email, value, issuedAt)
	default:
		err = t.repository.SetVerifyToken(ctx, email, value, issuedAt)
	}
	if err != nil {
		log.Err(err).Str("email", email).Str("kind", string(kind)).Msg("storing issued token failed")
		return models.IssuedToken{}, fmt.Errorf("storing issued token failed: %w", err)
	}

	return models.IssuedToken{
		Kind:      kind,
		Value:     value,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(t.ttl(kind)),
	}, nil
}

func (t *linkTokenIssuer) ttl(kind models.TokenKind) time.Duration {
	switch kind {
	case models.TokenKindPassphraseRecovery:
		if t.recoveryTTL > 0 {
			return t.recoveryTTL
		}
	default:
		if t.linkTTL > 0 {
			return t.linkTTL
		}
	}
	return kind.TTL()
}
