package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the API server and the session client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user is not active")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Registration errors
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidInvitationCode = errors.New("invalid church invitation code")
	ErrChurchNotFound        = errors.New("church not found")

	// Account errors
	ErrInvalidVerificationToken = errors.New("invalid email verification token")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
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

// Join returns an error wrapping every non-nil error in errs, or nil if there are none
func Join(errs ...error) error {
	return errors.Join(errs...)
}
