package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

var testAppConfig = config.App{
	BaseURL:                     "https://uranai.example.com",
	LinkTokenTTL:                30 * time.Minute,
	RecoveryTokenTTL:            24 * time.Hour,
	ResetVerificationOnResubmit: true,
}

func yukiProfile() models.Identity {
	return models.Identity{
		Email:        "a@x.com",
		Nickname:     "Yuki",
		BirthYear:    "1990",
		BirthMonth:   "5",
		BirthDay:     "1",
		GuardianKey:  "seiryu",
		GuardianName: "Seiryu",
	}
}

func newIdentityService(repo *repoMock, issuer *issuerMock, mail *mailMock) *identityService {
	svc := NewIdentityService(repo, issuer, mail, testAppConfig, logger.Nop())
	return svc.(*identityService)
}

func ptrTime(t time.Time) *time.Time { return &t }

// ─────────────────────────────────────────────────────────────────────────────
// Register
// ─────────────────────────────────────────────────────────────────────────────

// TestIdentityService_Register_PassesPolicyFlag verifies the configured
// resubmission policy reaches the repository call.
func TestIdentityService_Register_PassesPolicyFlag(t *testing.T) {
	var gotReset bool
	repo := &repoMock{
		createOrReplaceFn: func(_ context.Context, identity models.Identity, reset bool) (models.Identity, error) {
			gotReset = reset
			identity.ID = "id-1"
			identity.IsActive = true
			return identity, nil
		},
	}

	svc := newIdentityService(repo, nil, nil)

	saved, err := svc.Register(context.Background(), yukiProfile())
	require.NoError(t, err)
	assert.True(t, gotReset)
	assert.Equal(t, "id-1", saved.ID)
	assert.False(t, saved.IsVerified)
}

// TestIdentityService_Register_Validation rejects missing fields and
// malformed emails before any repository access.
func TestIdentityService_Register_Validation(t *testing.T) {
	svc := newIdentityService(&repoMock{}, nil, nil)

	missing := yukiProfile()
	missing.Nickname = ""
	_, err := svc.Register(context.Background(), missing)
	require.ErrorIs(t, err, ErrInvalidDataProvided)

	malformed := yukiProfile()
	malformed.Email = "not-an-email"
	_, err = svc.Register(context.Background(), malformed)
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

// ─────────────────────────────────────────────────────────────────────────────
// RequestVerification
// ─────────────────────────────────────────────────────────────────────────────

// TestIdentityService_RequestVerification_HappyPath saves the profile,
// issues a token and delivers the link built from the base URL.
func TestIdentityService_RequestVerification_HappyPath(t *testing.T) {
	issuedAt := time.Now().UTC()

	repo := &repoMock{
		findByEmailFn: func(context.Context, string) (models.Identity, error) {
			return models.Identity{}, store.ErrIdentityNotFound
		},
		createOrReplaceFn: func(_ context.Context, identity models.Identity, _ bool) (models.Identity, error) {
			return identity, nil
		},
	}
	issuer := &issuerMock{
		issueFn: func(_ context.Context, email string, kind models.TokenKind) (models.IssuedToken, error) {
			require.Equal(t, "a@x.com", email)
			require.Equal(t, models.TokenKindRegistrationLink, kind)
			return models.IssuedToken{
				Kind:      kind,
				Value:     "deadbeef",
				IssuedAt:  issuedAt,
				ExpiresAt: issuedAt.Add(30 * time.Minute),
			}, nil
		},
	}
	var deliveredLink string
	mail := &mailMock{
		magicFn: func(_ context.Context, recipient, link string, _ time.Time) error {
			require.Equal(t, "a@x.com", recipient)
			deliveredLink = link
			return nil
		},
	}

	svc := newIdentityService(repo, issuer, mail)

	link, expiresAt, err := svc.RequestVerification(context.Background(), yukiProfile())
	require.NoError(t, err)
	assert.Equal(t, "https://uranai.example.com/api/verify-magic-link?token=deadbeef", link)
	assert.Equal(t, deliveredLink, link)
	assert.True(t, issuedAt.Add(30*time.Minute).Equal(expiresAt))
}

// TestIdentityService_RequestVerification_VerifiedConflict rejects an email
// already held by a completed registration.
func TestIdentityService_RequestVerification_VerifiedConflict(t *testing.T) {
	repo := &repoMock{
		findByEmailFn: func(context.Context, string) (models.Identity, error) {
			return models.Identity{Email: "a@x.com", IsVerified: true}, nil
		},
	}

	svc := newIdentityService(repo, nil, nil)

	_, _, err := svc.RequestVerification(context.Background(), yukiProfile())
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

// TestIdentityService_RequestVerification_UnverifiedResubmit allows
// re-requesting for an unverified email; the resubmission overwrites the
// profile and a fresh token replaces the old one.
func TestIdentityService_RequestVerification_UnverifiedResubmit(t *testing.T) {
	var upserted models.Identity
	repo := &repoMock{
		findByEmailFn: func(context.Context, string) (models.Identity, error) {
			return models.Identity{Email: "a@x.com", Nickname: "OldNick", IsVerified: false}, nil
		},
		createOrReplaceFn: func(_ context.Context, identity models.Identity, _ bool) (models.Identity, error) {
			upserted = identity
			return identity, nil
		},
	}
	issuer := &issuerMock{
		issueFn: func(_ context.Context, _ string, kind models.TokenKind) (models.IssuedToken, error) {
			return models.IssuedToken{Kind: kind, Value: "fresh", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}, nil
		},
	}
	mail := &mailMock{
		magicFn: func(context.Context, string, string, time.Time) error { return nil },
	}

	svc := newIdentityService(repo, issuer, mail)

	_, _, err := svc.RequestVerification(context.Background(), yukiProfile())
	require.NoError(t, err)
	assert.Equal(t, "Yuki", upserted.Nickname)
}

// TestIdentityService_RequestVerification_DeliveryFailure surfaces a mail
// gateway failure after the state writes have landed.
func TestIdentityService_RequestVerification_DeliveryFailure(t *testing.T) {
	repo := &repoMock{
		findByEmailFn: func(context.Context, string) (models.Identity, error) {
			return models.Identity{}, store.ErrIdentityNotFound
		},
		createOrReplaceFn: func(_ context.Context, identity models.Identity, _ bool) (models.Identity, error) {
			return identity, nil
		},
	}
	issuer := &issuerMock{
		issueFn: func(_ context.Context, _ string, kind models.TokenKind) (models.IssuedToken, error) {
			return models.IssuedToken{Kind: kind, Value: "tok", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}, nil
		},
	}
	mail := &mailMock{
		magicFn: func(context.Context, string, string, time.Time) error {
			return errors.New("smtp down")
		},
	}

	svc := newIdentityService(repo, issuer, mail)

	_, _, err := svc.RequestVerification(context.Background(), yukiProfile())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidDataProvided)
}

// ─────────────────────────────────────────────────────────────────────────────
// ConsumeVerificationToken
// ─────────────────────────────────────────────────────────────────────────────

// TestIdentityService_ConsumeVerificationToken_HappyPath flips the holder
// to verified through the conditional update.
func TestIdentityService_ConsumeVerificationToken_HappyPath(t *testing.T) {
	repo := &repoMock{
		findByVerifyTokenFn: func(_ context.Context, token string) (models.Identity, error) {
			require.Equal(t, "tok", token)
			holder := yukiProfile()
			holder.VerifyToken = "tok"
			holder.VerifyTokenIssuedAt = ptrTime(time.Now().Add(-5 * time.Minute))
			return holder, nil
		},
		consumeVerifyTokenFn: func(_ context.Context, token string) (models.Identity, error) {
			verified := yukiProfile()
			verified.IsVerified = true
			return verified, nil
		},
	}

	svc := newIdentityService(repo, nil, nil)

	verified, err := svc.ConsumeVerificationToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

// TestIdentityService_ConsumeVerificationToken_Unknown maps an unknown
// token to ErrTokenNotFound.
func TestIdentityService_ConsumeVerificationToken_Unknown(t *testing.T) {
	repo := &repoMock{
		findByVerifyTokenFn: func(context.Context, string) (models.Identity, error) {
			return models.Identity{}, store.ErrTokenNotFound
		},
	}

	svc := newIdentityService(repo, nil, nil)

	_, err := svc.ConsumeVerificationToken(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

// TestIdentityService_ConsumeVerificationToken_Expired rejects a token
// issued 31 minutes ago and discards it best-effort; the identity stays
// unverified.
func TestIdentityService_ConsumeVerificationToken_Expired(t *testing.T) {
	cleared := false
	repo := &repoMock{
		findByVerifyTokenFn: func(context.Context, string) (models.Identity, error) {
			holder := yukiProfile()
			holder.VerifyToken = "stale"
			holder.VerifyTokenIssuedAt = ptrTime(time.Now().Add(-31 * time.Minute))
			return holder, nil
		},
		clearVerifyTokenFn: func(_ context.Context, email string) error {
			require.Equal(t, "a@x.com", email)
			cleared = true
			return nil
		},
	}

	svc := newIdentityService(repo, nil, nil)

	_, err := svc.ConsumeVerificationToken(context.Background(), "stale")
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.True(t, cleared)
}

// TestIdentityService_ConsumeVerificationToken_ExpiredCleanupFails keeps
// rejecting the token even when the discard write fails.
func TestIdentityService_ConsumeVerificationToken_ExpiredCleanupFails(t *testing.T) {
	repo := &repoMock{
		findByVerifyTokenFn: func(context.Context, string) (models.Identity, error) {
			holder := yukiProfile()
			holder.VerifyToken = "stale"
			holder.VerifyTokenIssuedAt = ptrTime(time.Now().Add(-31 * time.Minute))
			return holder, nil
		},
		clearVerifyTokenFn: func(context.Context, string) error {
			return errors.New("db down")
		},
	}

	svc := newIdentityService(repo, nil, nil)

	_, err := svc.ConsumeVerificationToken(context.Background(), "stale")
	require.ErrorIs(t, err, ErrTokenExpired)
}

// TestIdentityService_ConsumeVerificationToken_LostRace maps a zero-row
// conditional update to ErrTokenAlreadyUsed: the lookup saw the token but
// a concurrent consumer won.
func TestIdentityService_ConsumeVerificationToken_LostRace(t *testing.T) {
	repo := &repoMock{
		findByVerifyTokenFn: func(context.Context, string) (models.Identity, error) {
			holder := yukiProfile()
			holder.VerifyToken = "tok"
			holder.VerifyTokenIssuedAt = ptrTime(time.Now())
			return holder, nil
		},
		consumeVerifyTokenFn: func(context.Context, string) (models.Identity, error) {
			return models.Identity{}, store.ErrTokenNotFound
		},
	}

	svc := newIdentityService(repo, nil, nil)

	_, err := svc.ConsumeVerificationToken(context.Background(), "tok")
	require.ErrorIs(t, err, ErrTokenAlreadyUsed)
}

// ─────────────────────────────────────────────────────────────────────────────
// RequestPassphraseRecovery
// ─────────────────────────────────────────────────────────────────────────────

func recoveryRequest() models.RecoveryRequest {
	return models.RecoveryRequest{
		Nickname:   "Yuki",
		BirthYear:  "1990",
		BirthMonth: "5",
		BirthDay:   "1",
		Email:      "a@x.com",
	}
}

// TestIdentityService_RequestPassphraseRecovery_HappyPath issues and
// delivers a recovery token for a fully matching verified identity.
func TestIdentityService_RequestPassphraseRecovery_HappyPath(t *testing.T) {
	repo := &repoMock{
		findByEmailFn: func(context.Context, string) (models.Identity, error) {
			identity := yukiProfile()
			identity.IsVerified = true
			identity.IsActive = true
			return identity, nil
		},
	}
	issuer := &issuerMock{
		issueFn: func(_ context.Context, email string, kind models.TokenKind) (models.IssuedToken, error) {
			require.Equal(t, models.TokenKindPassphraseRecovery, kind)
			return models.IssuedToken{Kind: kind, Value: "rec", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
		},
	}
	var deliveredLink string
	mail := &mailMock{
		recoveryFn: func(_ context.Context, _, link string, _ time.Time) error {
			deliveredLink = link
			return nil
		},
	}

	svc := newIdentityService(repo, issuer, mail)

	require.NoError(t, svc.RequestPassphraseRecovery(context.Background(), recoveryRequest()))
	assert.Equal(t, "https://uranai.example.com/reset-passphrase?token=rec", deliveredLink)
}

// TestIdentityService_RequestPassphraseRecovery_NoMatch collapses every
// mismatch into the same generic error: unknown email, wrong factor, and
// unverified identity are indistinguishable to the caller.
func TestIdentityService_RequestPassphraseRecovery_NoMatch(t *testing.T) {
	tests := []struct {
		name  string
		found func() (models.Identity, error)
	}{
		{
			name: "unknown email",
			found: func() (models.Identity, error) {
				return models.Identity{}, store.ErrIdentityNotFound
			},
		},
		{
			name: "wrong nickname",
			found: func() (models.Identity, error) {
				identity := yukiProfile()
				identity.Nickname = "Hana"
				identity.IsVerified = true
				identity.IsActive = true
				return identity, nil
			},
		},
		{
			name: "wrong birth day",
			found: func() (models.Identity, error) {
				identity := yukiProfile()
				identity.BirthDay = "2"
				identity.IsVerified = true
				identity.IsActive = true
				return identity, nil
			},
		},
		{
			name: "never verified",
			found: func() (models.Identity, error) {
				identity := yukiProfile()
				identity.IsActive = true
				return identity, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMock{
				findByEmailFn: func(context.Context, string) (models.Identity, error) {
					return tt.found()
				},
			}
			svc := newIdentityService(repo, nil, nil)

			err := svc.RequestPassphraseRecovery(context.Background(), recoveryRequest())
			require.ErrorIs(t, err, ErrIdentityNotFound)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// VerifyRecoveryToken / UpdatePassphrase
// ─────────────────────────────────────────────────────────────────────────────

func recoveryHolder(issuedAgo time.Duration, used bool) models.Identity {
	holder := yukiProfile()
	holder.IsVerified = true
	holder.IsActive = true
	holder.RecoveryToken = "rec"
	holder.RecoveryTokenIssuedAt = ptrTime(time.Now().Add(-issuedAgo))
	holder.RecoveryTokenUsed = used
	return holder
}

// TestIdentityService_VerifyRecoveryToken covers valid, used and expired
// tokens in one table.
func TestIdentityService_VerifyRecoveryToken(t *testing.T) {
	tests := []struct {
		name    string
		holder  models.Identity
		wantErr error
	}{
		{name: "outstanding token", holder: recoveryHolder(time.Hour, false), wantErr: nil},
		{name: "already used", holder: recoveryHolder(time.Hour, true), wantErr: ErrTokenAlreadyUsed},
		{name: "expired", holder: recoveryHolder(25*time.Hour, false), wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMock{
				findByRecoveryTokenFn: func(context.Context, string) (models.Identity, error) {
					return tt.holder, nil
				},
			}
			svc := newIdentityService(repo, nil, nil)

			got, err := svc.VerifyRecoveryToken(context.Background(), "rec")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Yuki", got.Nickname)
		})
	}
}

// TestIdentityService_UpdatePassphrase_HappyPath stores a bcrypt hash of
// the new passphrase through the consuming update.
func TestIdentityService_UpdatePassphrase_HappyPath(t *testing.T) {
	var storedHash string
	repo := &repoMock{
		findByRecoveryTokenFn: func(context.Context, string) (models.Identity, error) {
			return recoveryHolder(time.Hour, false), nil
		},
		consumeRecoveryTokenFn: func(_ context.Context, token, hash string) (models.Identity, error) {
			require.Equal(t, "rec", token)
			storedHash = hash
			return recoveryHolder(time.Hour, true), nil
		},
	}

	svc := newIdentityService(repo, nil, nil)

	require.NoError(t, svc.UpdatePassphrase(context.Background(), "rec", "sakura"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("sakura")))
}

// TestIdentityService_UpdatePassphrase_LostRace maps a zero-row consuming
// update to ErrTokenAlreadyUsed.
func TestIdentityService_UpdatePassphrase_LostRace(t *testing.T) {
	repo := &repoMock{
		findByRecoveryTokenFn: func(context.Context, string) (models.Identity, error) {
			return recoveryHolder(time.Hour, false), nil
		},
		consumeRecoveryTokenFn: func(context.Context, string, string) (models.Identity, error) {
			return models.Identity{}, store.ErrTokenNotFound
		},
	}

	svc := newIdentityService(repo, nil, nil)

	err := svc.UpdatePassphrase(context.Background(), "rec", "sakura")
	require.ErrorIs(t, err, ErrTokenAlreadyUsed)
}

// ─────────────────────────────────────────────────────────────────────────────
// SetPassphrase / Withdraw
// ─────────────────────────────────────────────────────────────────────────────

// TestIdentityService_SetPassphrase maps the repository's precondition
// errors and verifies the stored value is a bcrypt hash, never plaintext.
func TestIdentityService_SetPassphrase(t *testing.T) {
	var storedHash string
	repo := &repoMock{
		setPassphraseFn: func(_ context.Context, email, hash string) error {
			switch email {
			case "unverified@x.com":
				return store.ErrIdentityNotVerified
			case "missing@x.com":
				return store.ErrIdentityNotFound
			}
			storedHash = hash
			return nil
		},
	}

	svc := newIdentityService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetPassphrase(ctx, "a@x.com", "sakura"))
	assert.NotEqual(t, "sakura", storedHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("sakura")))

	require.ErrorIs(t, svc.SetPassphrase(ctx, "unverified@x.com", "sakura"), ErrPassphraseRequiresVerification)
	require.ErrorIs(t, svc.SetPassphrase(ctx, "missing@x.com", "sakura"), ErrIdentityNotFound)
	require.ErrorIs(t, svc.SetPassphrase(ctx, "", "sakura"), ErrInvalidDataProvided)
}

// TestIdentityService_Withdraw removes the row and maps a missing one.
func TestIdentityService_Withdraw(t *testing.T) {
	repo := &repoMock{
		deleteFn: func(_ context.Context, email string) error {
			if email == "missing@x.com" {
				return store.ErrIdentityNotFound
			}
			return nil
		},
	}

	svc := newIdentityService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Withdraw(ctx, "a@x.com"))
	require.ErrorIs(t, svc.Withdraw(ctx, "missing@x.com"), ErrIdentityNotFound)
	require.ErrorIs(t, svc.Withdraw(ctx, ""), ErrInvalidDataProvided)
}
