package store

const identityColumns = `id, email, nickname, birth_year, birth_month, birth_day,
		guardian_key, guardian_name, passphrase_hash,
		verify_token, verify_token_issued_at,
		recovery_token, recovery_token_issued_at, recovery_token_used,
		is_verified, is_active, created_at`

const (
	// Registration upsert, observed behaviour: re-entering an email before
	// verifying overwrites the profile and restarts the verification clock.
	upsertIdentityReset = `INSERT INTO identities (
			id, email, nickname, birth_year, birth_month, birth_day,
			guardian_key, guardian_name, is_verified, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, TRUE, NOW())
		ON CONFLICT (email) DO UPDATE SET
			nickname       = EXCLUDED.nickname,
			birth_year     = EXCLUDED.birth_year,
			birth_month    = EXCLUDED.birth_month,
			birth_day      = EXCLUDED.birth_day,
			guardian_key   = EXCLUDED.guardian_key,
			guardian_name  = EXCLUDED.guardian_name,
			passphrase_hash          = NULL,
			verify_token             = NULL,
			verify_token_issued_at   = NULL,
			recovery_token           = NULL,
			recovery_token_issued_at = NULL,
			recovery_token_used      = FALSE,
			is_verified    = FALSE,
			is_active      = TRUE,
			created_at     = NOW()
		RETURNING ` + identityColumns + `;`

	// Alternative upsert for deployments that opt out of the
	// reset-on-resubmit policy: only profile fields are overwritten.
	upsertIdentityKeep = `INSERT INTO identities (
			id, email, nickname, birth_year, birth_month, birth_day,
			guardian_key, guardian_name, is_verified, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, TRUE, NOW())
		ON CONFLICT (email) DO UPDATE SET
			nickname       = EXCLUDED.nickname,
			birth_year     = EXCLUDED.birth_year,
			birth_month    = EXCLUDED.birth_month,
			birth_day      = EXCLUDED.birth_day,
			guardian_key   = EXCLUDED.guardian_key,
			guardian_name  = EXCLUDED.guardian_name,
			created_at     = NOW()
		RETURNING ` + identityColumns + `;`

	findIdentityByEmail = `SELECT ` + identityColumns + `
		FROM identities
		WHERE email = $1;`

	findIdentityByID = `SELECT ` + identityColumns + `
		FROM identities
		WHERE id = $1;`

	findIdentityByVerifyToken = `SELECT ` + identityColumns + `
		FROM identities
		WHERE verify_token = $1;`

	findIdentityByRecoveryToken = `SELECT ` + identityColumns + `
		FROM identities
		WHERE recovery_token = $1;`

	setVerifyToken = `UPDATE identities SET
			verify_token           = $2,
			verify_token_issued_at = $3
		WHERE email = $1;`

	setRecoveryToken = `UPDATE identities SET
			recovery_token           = $2,
			recovery_token_issued_at = $3,
			recovery_token_used      = FALSE
		WHERE email = $1;`

	// Single conditional UPDATE: zero rows affected means the token was
	// already consumed or never existed, which is what guarantees
	// at-most-once consumption under concurrent replay.
	consumeVerifyToken = `UPDATE identities SET
			is_verified            = TRUE,
			verify_token           = NULL,
			verify_token_issued_at = NULL
		WHERE verify_token = $1 AND verify_token IS NOT NULL
		RETURNING ` + identityColumns + `;`

	consumeRecoveryToken = `UPDATE identities SET
			passphrase_hash     = $2,
			recovery_token_used = TRUE
		WHERE recovery_token = $1 AND recovery_token_used = FALSE AND is_verified = TRUE
		RETURNING ` + identityColumns + `;`

	clearVerifyToken = `UPDATE identities SET
			verify_token           = NULL,
			verify_token_issued_at = NULL
		WHERE email = $1;`

	setPassphrase = `UPDATE identities SET
			passphrase_hash = $2
		WHERE email = $1 AND is_verified = TRUE;`

	deleteIdentity = `DELETE FROM identities
		WHERE email = $1;`
)
