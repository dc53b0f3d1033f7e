package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/models"
	"golang.org/x/crypto/bcrypt"
)

// authService validates login attempts. The repository narrows candidates
// to verified, active rows matching the nickname and birth date, newest
// first; the passphrase factor is compared here against the bcrypt hash,
// and the first matching candidate wins.
type authService struct {
	repository store.IdentityRepository
	logger     *logger.Logger
}

// NewAuthService wires the login check.
func NewAuthService(repository store.IdentityRepository, logger *logger.Logger) AuthService {
	return &authService{repository: repository, logger: logger}
}

// Login authenticates the five-factor tuple. Every failure after
// validation is ErrAuthenticationFailed; the caller never learns which
// factor was wrong.
func (a *authService) Login(ctx context.Context, req models.LoginRequest) (models.Identity, error) {
	log := logger.FromContext(ctx)

	if req.Nickname == "" || req.BirthYear == "" || req.BirthMonth == "" ||
		req.BirthDay == "" || req.Passphrase == "" {
		return models.Identity{}, ErrInvalidDataProvided
	}

	candidates, err := a.repository.FindByLoginFactors(ctx, req.Nickname, req.BirthYear, req.BirthMonth, req.BirthDay)
	if err != nil {
		log.Err(err).Str("nickname", req.Nickname).Msg("login candidate lookup failed")
		return models.Identity{}, fmt.Errorf("login candidate lookup failed: %w", err)
	}

	for _, candidate := range candidates {
		if candidate.PassphraseHash == "" {
			continue
		}
		err = bcrypt.CompareHashAndPassword([]byte(candidate.PassphraseHash), []byte(req.Passphrase))
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Err(err).Str("nickname", req.Nickname).Msg("passphrase comparison failed")
		}
	}

	return models.Identity{}, ErrAuthenticationFailed
}
