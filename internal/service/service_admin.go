package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
	"golang.org/x/crypto/bcrypt"
)

// adminService authenticates the single configured administrator against a
// bcrypt credential hash and issues short-lived signed tokens for the admin
// endpoints. Nothing is persisted; the token itself is the session.
type adminService struct {
	repository store.IdentityRepository

	login          string
	passphraseHash string
	tokenSignKey   string
	tokenIssuer    string
	tokenDuration  time.Duration

	logger *logger.Logger
}

// NewAdminService wires the admin surface from configuration.
func NewAdminService(repository store.IdentityRepository, cfg config.Admin, logger *logger.Logger) AdminService {
	return &adminService{
		repository:     repository,
		login:          cfg.Login,
		passphraseHash: cfg.PassphraseHash,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// Login checks the credential pair and returns a signed token. Failures
// are uniformly ErrAuthenticationFailed.
func (a *adminService) Login(ctx context.Context, login, passphrase string) (string, error) {
	log := logger.FromContext(ctx)

	if login == "" || passphrase == "" {
		return "", ErrInvalidDataProvided
	}

	loginMatches := subtle.ConstantTimeCompare([]byte(login), []byte(a.login)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.passphraseHash), []byte(passphrase))
	if !loginMatches || passErr != nil {
		log.Warn().Str("login", login).Msg("admin login rejected")
		return "", ErrAuthenticationFailed
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, a.login, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		log.Err(err).Msg("admin token generation failed")
		return "", fmt.Errorf("admin token generation failed: %w", err)
	}

	return token, nil
}

// ParseToken verifies the signature, issuer and expiry of an admin token
// and returns the login it was issued for. Every validation failure is
// normalised to ErrTokenExpired so callers need not inspect JWT internals.
func (a *adminService) ParseToken(tokenString string) (string, error) {
	login, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return "", ErrTokenExpired
	}
	return login, nil
}

// ListIdentities returns every identity row, most recently created first.
func (a *adminService) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	log := logger.FromContext(ctx)

	identities, err := a.repository.List(ctx)
	if err != nil {
		log.Err(err).Msg("identity listing failed")
		return nil, fmt.Errorf("identity listing failed: %w", err)
	}

	return identities, nil
}
