package models

import (
	"errors"
	"fmt"

	"github.com/BradenHooton/passguard/pkg/password"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Authentication
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidSecondFactor = errors.New("invalid second factor")
	ErrAccountLocked       = errors.New("too many failed confirmation attempts")
	ErrSessionExpired      = errors.New("login session expired")
	ErrUnexpectedStage     = errors.New("request does not match the login stage")

	// Local validation
	ErrWeakPassword = errors.New("password does not meet policy")
	ErrMissingField = errors.New("required field is empty")

	// Generation
	ErrInvalidParameter     = password.ErrInvalidParameter
	ErrGeneratorUnavailable = password.ErrGeneratorUnavailable

	// Retryable backend failures
	ErrTimeout            = errors.New("backend timed out")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// AttemptError reports a failed confirmation together with the attempt count.
// It matches ErrAccountLocked once the limit is reached and
// ErrInvalidCredentials before that.
type AttemptError struct {
	Attempts int
	Max      int
}

func (e *AttemptError) Error() string {
	if e.Locked() {
		return fmt.Sprintf("%s (%d/%d)", ErrAccountLocked, e.Attempts, e.Max)
	}
	return fmt.Sprintf("%s (%d/%d)", ErrInvalidCredentials, e.Attempts, e.Max)
}

// Locked reports whether the attempt limit has been reached.
func (e *AttemptError) Locked() bool {
	return e.Attempts >= e.Max
}

// Remaining returns how many confirmation attempts are left.
func (e *AttemptError) Remaining() int {
	if e.Locked() {
		return 0
	}
	return e.Max - e.Attempts
}

func (e *AttemptError) Unwrap() error {
	if e.Locked() {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// WeakPasswordError lists the policy requirements a password failed.
type WeakPasswordError struct {
	Missing []password.Requirement
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("%s: missing %v", ErrWeakPassword, e.Missing)
}

func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrBackendUnavailable)
}
