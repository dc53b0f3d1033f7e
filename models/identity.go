package models

import "time"

// Identity represents one registered user of the fortune-telling service,
// keyed by email address. It carries both the profile fields captured at
// registration time and the verification / credential state that the
// identity lifecycle mutates.
//
// Secret fields (passphrase hash, outstanding tokens) must never be
// serialised into API responses; they are tagged `json:"-"`.
type Identity struct {
	// ID is the opaque stable identifier assigned at creation. It is never
	// reused, survives profile overwrites, and doubles as the session
	// cookie value after a successful login.
	ID string `json:"id"`

	// Email is the unique natural key. All lookups and updates key off it.
	Email string `json:"email"`

	// Nickname is the display name. Mutable, not unique, and one of the
	// five login factors.
	Nickname string `json:"nickname"`

	// Birth date components, stored separately as received from the
	// client. Used for personalisation and as login factors.
	BirthYear  string `json:"birthYear"`
	BirthMonth string `json:"birthMonth"`
	BirthDay   string `json:"birthDay"`

	// GuardianKey and GuardianName classify the identity's assigned
	// guardian deity. Descriptive only; copied through unchanged.
	GuardianKey  string `json:"guardianKey"`
	GuardianName string `json:"guardianName"`

	// PassphraseHash is the bcrypt hash of the user-chosen passphrase.
	// Empty until the user completes a set-passphrase step.
	PassphraseHash string `json:"-"`

	// VerifyToken is the outstanding magic-link token, if any, with its
	// issuance timestamp. Cleared atomically on consumption.
	VerifyToken         string     `json:"-"`
	VerifyTokenIssuedAt *time.Time `json:"-"`

	// RecoveryToken is the outstanding passphrase-recovery token, if any.
	// Unlike the magic-link token it survives consumption with
	// RecoveryTokenUsed set, so replay attempts can be rejected explicitly.
	RecoveryToken         string     `json:"-"`
	RecoveryTokenIssuedAt *time.Time `json:"-"`
	RecoveryTokenUsed     bool       `json:"-"`

	// IsVerified is false until the identity completes magic-link
	// verification.
	IsVerified bool `json:"isVerified"`

	// IsActive is the soft-deactivation flag.
	IsActive bool `json:"isActive"`

	// CreatedAt is stamped at creation and re-stamped on profile
	// overwrite. Login-factor ties are broken by the most recent value.
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the name of the database table
// associated with the Identity model.
func (i Identity) TableName() string {
	return "identities"
}

// HasVerifyToken reports whether a magic-link token is outstanding.
func (i Identity) HasVerifyToken() bool {
	return i.VerifyToken != "" && i.VerifyTokenIssuedAt != nil
}

// HasRecoveryToken reports whether a recovery token is outstanding.
func (i Identity) HasRecoveryToken() bool {
	return i.RecoveryToken != "" && i.RecoveryTokenIssuedAt != nil
}
