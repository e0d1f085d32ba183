// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Failure taxonomy shared by services, repositories and the HTTP boundary.
var (
	// ErrUnauthenticated indicates the request carries no verifiable subject.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates an authenticated subject with insufficient role
	// or an ownership mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a referenced vault/device/authority does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (duplicate id, duplicate grant).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates malformed identifiers or key material.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates a transient storage failure; callers may retry.
	ErrUnavailable = errors.New("unavailable")
)
