// Package errs contains sentinel errors shared by the auth core, repositories and handlers.
package errs

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is the single class every verification failure belongs to.
// Handlers answer 401 for anything that matches it and never echo the wrapped reason.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verification-path reasons. Kept distinct for logs only.
var (
	ErrMissingCredential   = fmt.Errorf("%w: missing credential", ErrUnauthenticated)
	ErrMalformedCredential = fmt.Errorf("%w: malformed credential", ErrUnauthenticated)
	ErrMissingSignature    = fmt.Errorf("%w: missing signature", ErrUnauthenticated)
	ErrInvalidSignature    = fmt.Errorf("%w: invalid signature", ErrUnauthenticated)
	ErrMalformedUserData   = fmt.Errorf("%w: malformed user data", ErrUnauthenticated)
	ErrExpired             = fmt.Errorf("%w: expired", ErrUnauthenticated)
	ErrWrongKind           = fmt.Errorf("%w: wrong token kind", ErrUnauthenticated)
	ErrInactiveAccount     = fmt.Errorf("%w: inactive account", ErrUnauthenticated)
)

// ErrConfigurationMissing is fatal at startup; it is never produced per request.
var ErrConfigurationMissing = errors.New("configuration missing")

// CRUD-layer sentinels.
var (
	// ErrNotFound indicates the requested entity does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates an authenticated caller without the required privilege.
	ErrForbidden = errors.New("forbidden")
)
