package services

import "errors"

// Service-level failures with user-facing messages. Handlers map these
// to HTTP statuses.
var (
	// ErrMissingParameters signals a required field was absent.
	ErrMissingParameters = errors.New("Missing parameters")

	// ErrEmailTaken signals a signup attempt with an already
	// registered email.
	ErrEmailTaken = errors.New("This email already has an account")

	// ErrUnknownEmail signals a login attempt for an email with no
	// account.
	ErrUnknownEmail = errors.New("email not known")

	// ErrWrongPassword signals a login attempt with a bad password.
	ErrWrongPassword = errors.New("wrong email/password")

	// ErrWrongPreviousPassword signals a password change where the
	// supplied previous password does not match the stored hash.
	ErrWrongPreviousPassword = errors.New("wrong previous password")

	// ErrSamePassword signals a password change where the new password
	// hashes identically to the previous one.
	ErrSamePassword = errors.New("must be different")
)
