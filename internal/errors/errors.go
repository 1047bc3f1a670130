package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth client
var (
	// Session errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrMissingCredentials = errors.New("missing persisted credentials")
	ErrStaleRenewal       = errors.New("renewal superseded by a newer session state")
	ErrClosed             = errors.New("session manager closed")

	// Token errors
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingExpiry = errors.New("token missing exp claim")

	// Configuration errors
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidConfig   = errors.New("invalid configuration")

	// General errors
	ErrUnsupported = errors.New("unsupported operation")
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
