package errors

import (
	"errors"
)

// Sentinel errors returned by services and repositories. Handlers map these
// to HTTP status codes; services never let raw collaborator errors cross
// their boundary.
var (
	// General
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotActivated   = errors.New("account is not activated")

	// Ephemeral tokens
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenPurposeMismatch = errors.New("token purpose mismatch")

	// Mail authentication code (second factor)
	ErrAuthCodeMismatch = errors.New("verification code is incorrect")
	ErrAuthCodeExpired  = errors.New("verification code has expired")

	// Signup tickets
	ErrTicketNotFound     = errors.New("signup ticket not found")
	ErrTicketExpired      = errors.New("signup ticket has expired")
	ErrTicketNotConfirmed = errors.New("signup ticket is not confirmed")

	// Registration
	ErrEmailExists     = errors.New("email is already registered")
	ErrDraftIncomplete = errors.New("signup data not found")

	// Users
	ErrUserNotFound = errors.New("user not found")
)

// IsUnauthorized reports whether err belongs to the credential/token failure
// class (401 family).
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenPurposeMismatch)
}

// IsNotFound reports whether err belongs to the not-found class (404 family).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTicketNotFound)
}

// IsConflict reports whether err belongs to the conflict class (409 family).
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

// IsBusiness reports whether err is an expected business outcome rather than
// an internal fault. Business outcomes are returned to callers as typed
// results and never logged as errors.
func IsBusiness(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return IsUnauthorized(err) || IsNotFound(err) || IsConflict(err) ||
		errors.Is(err, ErrUserNotActivated) ||
		errors.Is(err, ErrAuthCodeMismatch) ||
		errors.Is(err, ErrAuthCodeExpired) ||
		errors.Is(err, ErrTicketExpired) ||
		errors.Is(err, ErrTicketNotConfirmed) ||
		errors.Is(err, ErrDraftIncomplete)
}
