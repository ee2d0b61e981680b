// Package apperr holds the caller-visible error taxonomy. Domain packages wrap
// these sentinels so handlers can map any failure with errors.Is.
package apperr

import "errors"

var (
	// duplicate unique key (email, membership, registration)
	ErrConflict = errors.New("conflict")

	// login failure; unknown email and wrong password are deliberately the same error
	ErrInvalidCredentials = errors.New("invalid credentials")

	// missing, invalid or expired session
	ErrUnauthenticated = errors.New("unauthenticated")

	// expired, malformed or wrong-purpose reset token
	ErrInvalidResetToken = errors.New("invalid reset token")

	// authenticated but the role is insufficient
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")

	ErrInvalidInput = errors.New("invalid input")
)
