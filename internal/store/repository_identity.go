package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
	"github.com/jackc/pgerrcode"
)

// identityRepository is the PostgreSQL-backed implementation of
// [IdentityRepository]. It handles every lifecycle mutation of the
// "identities" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type identityRepository struct {
	logger *logger.Logger
	db     *DB
	ids    *utils.UUIDGenerator
}

// NewIdentityRepository constructs an [IdentityRepository] backed by the
// provided database connection and logger.
func NewIdentityRepository(db *DB, logger *logger.Logger) IdentityRepository {
	logger.Debug().Msg("creating identity repository")
	return &identityRepository{
		db:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
	}
}

// CreateOrReplace persists the profile fields under the identity's email,
// inserting an unverified row or overwriting an existing one. The reset
// branch additionally wipes verification, passphrase and token state.
//
// A fresh ID is generated for the insert branch; on conflict the existing
// row keeps its ID, so the identifier stays stable across resubmissions.
func (r *identityRepository) CreateOrReplace(ctx context.Context, identity models.Identity, resetVerification bool) (models.Identity, error) {
	log := logger.FromContext(ctx)

	query := upsertIdentityKeep
	if resetVerification {
		query = upsertIdentityReset
	}

	row := r.db.QueryRowContext(ctx, query,
		r.ids.Generate(), identity.Email, identity.Nickname,
		identity.BirthYear, identity.BirthMonth, identity.BirthDay,
		identity.GuardianKey, identity.GuardianName,
	)
	saved, err := scanIdentity(row)
	if err != nil {
		log.Err(err).Str("email", identity.Email).Msg("identity upsert failed")
		return models.Identity{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return saved, nil
}

// FindByEmail retrieves the identity row for the given email.
func (r *identityRepository) FindByEmail(ctx context.Context, email string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findIdentityByEmail, email)
	found, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrIdentityNotFound
		}
		log.Err(err).Str("email", email).Msg("identity lookup by email failed")
		return models.Identity{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// FindByID retrieves the identity row for the stable identifier.
func (r *identityRepository) FindByID(ctx context.Context, id string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findIdentityByID, id)
	found, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrIdentityNotFound
		}
		log.Err(err).Str("id", id).Msg("identity lookup by id failed")
		return models.Identity{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// FindByLoginFactors returns verified, active identities matching the
// nickname and birth-date triple, newest first. The query is built with
// squirrel because the result ordering and the factor set are the only
// dynamic parts of the store's read surface.
func (r *identityRepository) FindByLoginFactors(ctx context.Context, nickname, birthYear, birthMonth, birthDay string) ([]models.Identity, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Select(identityColumnList()...).
		From("identities").
		Where(sq.Eq{
			"nickname":    nickname,
			"birth_year":  birthYear,
			"birth_month": birthMonth,
			"birth_day":   birthDay,
			"is_verified": true,
			"is_active":   true,
		}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).Msg("building login factors query failed")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Msg("login factors query failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanIdentities(rows)
}

// SetVerifyToken stores a magic-link token on the identity, implicitly
// invalidating any previously outstanding one.
func (r *identityRepository) SetVerifyToken(ctx context.Context, email, token string, issuedAt time.Time) error {
	return r.execKeyed(ctx, setVerifyToken, email, token, issuedAt)
}

// SetRecoveryToken stores a recovery token on the identity and clears the
// consumed flag for the new token.
func (r *identityRepository) SetRecoveryToken(ctx context.Context, email, token string, issuedAt time.Time) error {
	return r.execKeyed(ctx, setRecoveryToken, email, token, issuedAt)
}

// FindByVerifyToken retrieves the identity holding the outstanding
// magic-link token.
func (r *identityRepository) FindByVerifyToken(ctx context.Context, token string) (models.Identity, error) {
	return r.findByToken(ctx, findIdentityByVerifyToken, token)
}

// FindByRecoveryToken retrieves the identity holding the recovery token,
// whether or not it has been consumed.
func (r *identityRepository) FindByRecoveryToken(ctx context.Context, token string) (models.Identity, error) {
	return r.findByToken(ctx, findIdentityByRecoveryToken, token)
}

// ConsumeVerifyToken flips the token holder to verified and clears the token
// in a single conditional UPDATE. sql.ErrNoRows from the RETURNING scan
// means the token is gone, either never issued or consumed concurrently.
func (r *identityRepository) ConsumeVerifyToken(ctx context.Context, token string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, consumeVerifyToken, token)
	consumed, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrTokenNotFound
		}
		log.Err(err).Msg("verify token consumption failed")
		return models.Identity{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return consumed, nil
}

// ConsumeRecoveryToken stores the new passphrase hash and marks the token
// consumed in a single conditional UPDATE, with the same zero-rows contract
// as ConsumeVerifyToken.
func (r *identityRepository) ConsumeRecoveryToken(ctx context.Context, token, passphraseHash string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, consumeRecoveryToken, token, passphraseHash)
	consumed, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrTokenNotFound
		}
		log.Err(err).Msg("recovery token consumption failed")
		return models.Identity{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return consumed, nil
}

// ClearVerifyToken discards an outstanding magic-link token. Used as
// best-effort cleanup after an expired consumption attempt; a failure here
// is safe because expiry is evaluated from the issuance timestamp, not the
// token's presence.
func (r *identityRepository) ClearVerifyToken(ctx context.Context, email string) error {
	return r.execKeyed(ctx, clearVerifyToken, email)
}

// SetPassphrase overwrites the passphrase hash of a verified identity. The
// verification precondition is part of the UPDATE's WHERE clause; a miss is
// classified afterwards into not-found versus not-verified.
func (r *identityRepository) SetPassphrase(ctx context.Context, email, passphraseHash string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, setPassphrase, email, passphraseHash)
	if err != nil {
		log.Err(err).Str("email", email).Msg("passphrase update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing row from an unverified one.
	if _, err = r.FindByEmail(ctx, email); err != nil {
		return err
	}
	return ErrIdentityNotVerified
}

// Delete removes the identity row entirely.
func (r *identityRepository) Delete(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteIdentity, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("identity deletion failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

// List returns every identity row, newest first.
func (r *identityRepository) List(ctx context.Context) ([]models.Identity, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Select(identityColumnList()...).
		From("identities").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).Msg("building list query failed")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Msg("identity list query failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanIdentities(rows)
}

func (r *identityRepository) findByToken(ctx context.Context, query, token string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, query, token)
	found, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrTokenNotFound
		}
		log.Err(err).Msg("identity lookup by token failed")
		return models.Identity{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// execKeyed runs a single-row UPDATE keyed by email and maps a zero-row
// result to ErrIdentityNotFound.
func (r *identityRepository) execKeyed(ctx context.Context, query, email string, args ...any) error {
	log := logger.FromContext(ctx)

	execArgs := append([]any{email}, args...)
	result, err := r.db.ExecContext(ctx, query, execArgs...)
	if err != nil {
		log.Err(err).Str("email", email).Msg("identity update failed")
		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return ErrEmailAlreadyExists
		default:
			return fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (models.Identity, error) {
	var (
		identity              models.Identity
		passphraseHash        sql.NullString
		verifyToken           sql.NullString
		verifyTokenIssuedAt   sql.NullTime
		recoveryToken         sql.NullString
		recoveryTokenIssuedAt sql.NullTime
	)

	err := row.Scan(
		&identity.ID, &identity.Email, &identity.Nickname,
		&identity.BirthYear, &identity.BirthMonth, &identity.BirthDay,
		&identity.GuardianKey, &identity.GuardianName, &passphraseHash,
		&verifyToken, &verifyTokenIssuedAt,
		&recoveryToken, &recoveryTokenIssuedAt, &identity.RecoveryTokenUsed,
		&identity.IsVerified, &identity.IsActive, &identity.CreatedAt,
	)
	if err != nil {
		return models.Identity{}, err
	}

	identity.PassphraseHash = passphraseHash.String
	identity.VerifyToken = verifyToken.String
	if verifyTokenIssuedAt.Valid {
		issued := verifyTokenIssuedAt.Time
		identity.VerifyTokenIssuedAt = &issued
	}
	identity.RecoveryToken = recoveryToken.String
	if recoveryTokenIssuedAt.Valid {
		issued := recoveryTokenIssuedAt.Time
		identity.RecoveryTokenIssuedAt = &issued
	}

	return identity, nil
}

func scanIdentities(rows *sql.Rows) ([]models.Identity, error) {
	var identities []models.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return identities, nil
}

// identityColumnList splits the shared column constant into the form
// squirrel expects.
func identityColumnList() []string {
	parts := strings.Split(identityColumns, ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		columns = append(columns, strings.TrimSpace(part))
	}
	return columns
}
