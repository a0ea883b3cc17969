package errors

import (
	"errors"
	"fmt"
)

// Common error types for the vibe-logger core
var (
	// Config errors - credential or token file problems.
	// Missing and malformed files get different remediation guidance,
	// so they are distinct sentinels.
	ErrCredentialNotFound  = errors.New("credential file not found")
	ErrCredentialMalformed = errors.New("credential file malformed")
	ErrTokenMalformed      = errors.New("token file malformed")

	// Auth errors - authentication flow failures
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrExchangeFailed   = errors.New("authorization code exchange failed")
	ErrInvalidCode      = errors.New("invalid authorization code")

	// State errors - session protocol violations
	ErrNoActiveSession = errors.New("no active session")
	ErrStaleSession    = errors.New("session is from a previous day")

	// Document errors
	ErrDocumentMissing = errors.New("correlated document no longer exists")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
