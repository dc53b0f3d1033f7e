package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/adapter"
	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/models"
	"golang.org/x/crypto/bcrypt"
)

// identityService implements the identity lifecycle: registration,
// magic-link verification, passphrase recovery and withdrawal. All token
// consumption goes through single conditional UPDATEs in the repository,
// so replays lose the race at the row level, not in this layer.
type identityService struct {
	repository store.IdentityRepository
	issuer     tokenIssuer
	mail       adapter.MailGateway

	// baseURL prefixes the links embedded in outgoing mail.
	baseURL string

	linkTTL     time.Duration
	recoveryTTL time.Duration

	// resetOnResubmit selects whether re-registering an email drops the
	// identity back to the unverified state.
	resetOnResubmit bool

	logger *logger.Logger
	now    func() time.Time
}

// NewIdentityService wires the lifecycle service.
func NewIdentityService(repository store.IdentityRepository, issuer tokenIssuer, mail adapter.MailGateway, cfg config.App, logger *logger.Logger) IdentityService {
	return &identityService{
		repository:      repository,
		issuer:          issuer,
		mail:            mail,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		linkTTL:         cfg.LinkTokenTTL,
		recoveryTTL:     cfg.RecoveryTokenTTL,
		resetOnResubmit: cfg.ResetVerificationOnResubmit,
		logger:          logger,
		now:             time.Now,
	}
}

// Register creates or overwrites the profile row for the email.
//
// Returns ErrInvalidDataProvided when a required profile field is missing
// or the email is malformed; repository failures are wrapped.
func (s *identityService) Register(ctx context.Context, identity models.Identity) (models.Identity, error) {
	log := logger.FromContext(ctx)

	if err := validateProfile(identity); err != nil {
		log.Error().Str("email", identity.Email).Msg("invalid registration payload")
		return models.Identity{}, err
	}

	saved, err := s.repository.CreateOrReplace(ctx, identity, s.resetOnResubmit)
	if err != nil {
		log.Err(err).Str("email", identity.Email).Msg("identity upsert failed")
		return models.Identity{}, fmt.Errorf("identity upsert failed: %w", err)
	}

	return saved, nil
}

// RequestVerification saves the profile, mints a magic-link token and asks
// the mail gateway to deliver it. The profile write and the token write
// land before the send, so a delivery failure leaves a consistent row the
// user can re-request against.
func (s *identityService) RequestVerification(ctx context.Context, identity models.Identity) (string, time.Time, error) {
	log := logger.FromContext(ctx)

	if err := validateProfile(identity); err != nil {
		log.Error().Str("email", identity.Email).Msg("invalid magic-link payload")
		return "", time.Time{}, err
	}

	existing, err := s.repository.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if existing.IsVerified {
			return "", time.Time{}, ErrEmailAlreadyRegistered
		}
	case errors.Is(err, store.ErrIdentityNotFound):
		// first sighting of this email
	default:
		log.Err(err).Str("email", identity.Email).Msg("identity lookup failed")
		return "", time.Time{}, fmt.Errorf("identity lookup failed: %w", err)
	}

	if _, err = s.repository.CreateOrReplace(ctx, identity, s.resetOnResubmit); err != nil {
		log.Err(err).Str("email", identity.Email).Msg("identity upsert failed")
		return "", time.Time{}, fmt.Errorf("identity upsert failed: %w", err)
	}

	issued, err := s.issuer.Issue(ctx, identity.Email, models.TokenKindRegistrationLink)
	if err != nil {
		return "", time.Time{}, err
	}

	link := fmt.Sprintf("%s/api/verify-magic-link?token=%s", s.baseURL, issued.Value)
	if err = s.mail.DeliverMagicLink(ctx, identity.Email, link, issued.ExpiresAt); err != nil {
		log.Err(err).Str("email", identity.Email).Msg("magic link delivery failed")
		return "", time.Time{}, fmt.Errorf("magic link delivery failed: %w", err)
	}

	return link, issued.ExpiresAt, nil
}

// ConsumeVerificationToken flips the token's holder to verified, at most
// once. Expiry is evaluated from the stored issuance timestamp before the
// conditional UPDATE runs; discarding an expired token is best-effort
// because the read-time check alone already rejects it.
func (s *identityService) ConsumeVerificationToken(ctx context.Context, token string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return models.Identity{}, ErrInvalidDataProvided
	}

	holder, err := s.repository.FindByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return models.Identity{}, ErrTokenNotFound
		}
		log.Err(err).Msg("verify token lookup failed")
		return models.Identity{}, fmt.Errorf("verify token lookup failed: %w", err)
	}

	if s.expired(holder.VerifyTokenIssuedAt, s.ttl(models.TokenKindRegistrationLink)) {
		if clearErr := s.repository.ClearVerifyToken(ctx, holder.Email); clearErr != nil {
			log.Err(clearErr).Str("email", holder.Email).Msg("expired token cleanup failed")
		}
		return models.Identity{}, ErrTokenExpired
	}

	verified, err := s.repository.ConsumeVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			// lost the race against a concurrent consumption
			return models.Identity{}, ErrTokenAlreadyUsed
		}
		log.Err(err).Str("email", holder.Email).Msg("verify token consumption failed")
		return models.Identity{}, fmt.Errorf("verify token consumption failed: %w", err)
	}

	return verified, nil
}

// RequestPassphraseRecovery issues and delivers a recovery token when the
// nickname, birth date and email all match a verified identity. Every
// mismatch collapses into ErrIdentityNotFound so callers cannot probe
// individual factors.
func (s *identityService) RequestPassphraseRecovery(ctx context.Context, req models.RecoveryRequest) error {
	log := logger.FromContext(ctx)

	if req.Email == "" || req.Nickname == "" || req.BirthYear == "" || req.BirthMonth == "" || req.BirthDay == "" {
		return ErrInvalidDataProvided
	}

	identity, err := s.repository.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			return ErrIdentityNotFound
		}
		log.Err(err).Msg("identity lookup failed")
		return fmt.Errorf("identity lookup failed: %w", err)
	}

	if !identity.IsVerified || !identity.IsActive ||
		identity.Nickname != req.Nickname ||
		identity.BirthYear != req.BirthYear ||
		identity.BirthMonth != req.BirthMonth ||
		identity.BirthDay != req.BirthDay {
		return ErrIdentityNotFound
	}

	issued, err := s.issuer.Issue(ctx, identity.Email, models.TokenKindPassphraseRecovery)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-passphrase?token=%s", s.baseURL, issued.Value)
	if err = s.mail.DeliverRecoveryLink(ctx, identity.Email, link, issued.ExpiresAt); err != nil {
		log.Err(err).Str("email", identity.Email).Msg("recovery link delivery failed")
		return fmt.Errorf("recovery link delivery failed: %w", err)
	}

	return nil
}

// VerifyRecoveryToken checks a recovery token without consuming it, so the
// reset form can greet the user before asking for a new passphrase.
func (s *identityService) VerifyRecoveryToken(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrInvalidDataProvided
	}

	holder, err := s.findRecoveryHolder(ctx, token)
	if err != nil {
		return models.Identity{}, err
	}

	return holder, nil
}

// UpdatePassphrase exchanges a recovery token for a passphrase change, at
// most once.
func (s *identityService) UpdatePassphrase(ctx context.Context, token, newPassphrase string) error {
	log := logger.FromContext(ctx)

	if token == "" || newPassphrase == "" {
		return ErrInvalidDataProvided
	}

	holder, err := s.findRecoveryHolder(ctx, token)
	if err != nil {
		return err
	}

	hash, err := hashPassphrase(newPassphrase)
	if err != nil {
		log.Err(err).Msg("passphrase hashing failed")
		return fmt.Errorf("passphrase hashing failed: %w", err)
	}

	if _, err = s.repository.ConsumeRecoveryToken(ctx, token, hash); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			// lost the race against a concurrent consumption
			return ErrTokenAlreadyUsed
		}
		log.Err(err).Str("email", holder.Email).Msg("recovery token consumption failed")
		return fmt.Errorf("recovery token consumption failed: %w", err)
	}

	return nil
}

// SetPassphrase stores the passphrase for a verified identity, keyed by
// email.
func (s *identityService) SetPassphrase(ctx context.Context, email, passphrase string) error {
	log := logger.FromContext(ctx)

	if email == "" || passphrase == "" {
		return ErrInvalidDataProvided
	}

	hash, err := hashPassphrase(passphrase)
	if err != nil {
		log.Err(err).Msg("passphrase hashing failed")
		return fmt.Errorf("passphrase hashing failed: %w", err)
	}

	if err = s.repository.SetPassphrase(ctx, email, hash); err != nil {
		switch {
		case errors.Is(err, store.ErrIdentityNotFound):
			return ErrIdentityNotFound
		case errors.Is(err, store.ErrIdentityNotVerified):
			return ErrPassphraseRequiresVerification
		}
		log.Err(err).Str("email", email).Msg("passphrase update failed")
		return fmt.Errorf("passphrase update failed: %w", err)
	}

	return nil
}

// Withdraw removes the identity row entirely.
func (s *identityService) Withdraw(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	if email == "" {
		return ErrInvalidDataProvided
	}

	if err := s.repository.Delete(ctx, email); err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			return ErrIdentityNotFound
		}
		log.Err(err).Str("email", email).Msg("identity deletion failed")
		return fmt.Errorf("identity deletion failed: %w", err)
	}

	return nil
}

// findRecoveryHolder loads the recovery token's holder and applies the
// used, expired and verified checks shared by the read-only check and the
// consuming update.
func (s *identityService) findRecoveryHolder(ctx context.Context, token string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	holder, err := s.repository.FindByRecoveryToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return models.Identity{}, ErrTokenNotFound
		}
		log.Err(err).Msg("recovery token lookup failed")
		return models.Identity{}, fmt.Errorf("recovery token lookup failed: %w", err)
	}

	if holder.RecoveryTokenUsed {
		return models.Identity{}, ErrTokenAlreadyUsed
	}
	if s.expired(holder.RecoveryTokenIssuedAt, s.ttl(models.TokenKindPassphraseRecovery)) {
		return models.Identity{}, ErrTokenExpired
	}
	if !holder.IsVerified {
		return models.Identity{}, ErrTokenNotFound
	}

	return holder, nil
}

func (s *identityService) ttl(kind models.TokenKind) time.Duration {
	switch kind {
	case models.TokenKindPassphraseRecovery:
		if s.recoveryTTL > 0 {
			return s.recoveryTTL
		}
	default:
		if s.linkTTL > 0 {
			return s.linkTTL
		}
	}
	return kind.TTL()
}

func (s *identityService) expired(issuedAt *time.Time, ttl time.Duration) bool {
	if issuedAt == nil {
		return true
	}
	return s.now().Sub(*issuedAt) > ttl
}

func validateProfile(identity models.Identity) error {
	if identity.Email == "" || identity.Nickname == "" ||
		identity.BirthYear == "" || identity.BirthMonth == "" || identity.BirthDay == "" {
		return ErrInvalidDataProvided
	}
	if _, err := mail.ParseAddress(identity.Email); err != nil {
		return ErrInvalidDataProvided
	}
	return nil
}

func hashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
