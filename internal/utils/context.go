// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, single-use token generation, JWT token generation
// and validation, and other common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// IdentityIDCtxKey is the key used to store the authenticated identity's
// stable identifier in the context. Populated by the session middleware
// from the session cookie.
var IdentityIDCtxKey = contextKey("identityID")

// AdminLoginCtxKey is the key used to store the authenticated admin login
// in the context. Populated by the admin token middleware.
var AdminLoginCtxKey = contextKey("adminLogin")

// GetIdentityIDFromContext retrieves the identity identifier from the context.
//
// Returns the identifier and an ok flag:
//   - ok == true: value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
func GetIdentityIDFromContext(ctx context.Context) (string, bool) {
	identityID, ok := ctx.Value(IdentityIDCtxKey).(string)
	return identityID, ok
}

// GetAdminLoginFromContext retrieves the admin login from the context.
func GetAdminLoginFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(AdminLoginCtxKey).(string)
	return login, ok
}
