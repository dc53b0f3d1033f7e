package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrEmailAlreadyRegistered is returned when a magic link is requested
	// for an email already held by a verified identity.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	ErrIdentityNotFound = errors.New("identity not found")

	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenExpired     = errors.New("token is expired")
	ErrTokenAlreadyUsed = errors.New("token already used")

	// ErrPassphraseRequiresVerification is returned when a passphrase is
	// set on an identity that has not completed magic-link verification.
	ErrPassphraseRequiresVerification = errors.New("passphrase requires a verified identity")

	// ErrAuthenticationFailed is deliberately generic: callers must not
	// learn which login factor was wrong.
	ErrAuthenticationFailed = errors.New("authentication failed")
)
