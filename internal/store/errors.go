package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an insert fails because a row
	// with the same email already exists and the caller did not request an
	// overwrite.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrIdentityNotFound is returned when a query expected to match exactly
	// one identity row produces an empty result set.
	ErrIdentityNotFound = errors.New("no identity was found")

	// ErrIdentityNotVerified is returned when a mutation requires a verified
	// identity (setting a passphrase) but the matched row is unverified.
	ErrIdentityNotVerified = errors.New("identity is not verified")

	// ErrTokenNotFound is returned when no identity holds the given
	// outstanding token. A conditional consume that affects zero rows also
	// reports this error; the service layer decides whether that means the
	// token never existed or was consumed by a concurrent request.
	ErrTokenNotFound = errors.New("no identity holds this token")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan identity row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan identity rows")
)
