package models

import (
	"time"
)

// User is an account held by the local identity store.
type User struct {
	ID                  string
	Username            string
	PasswordHash        string
	TOTPSecretEncrypted []byte // nil when no second factor is enrolled
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TOTPEnrolled reports whether the account has a second factor.
func (u *User) TOTPEnrolled() bool {
	return len(u.TOTPSecretEncrypted) > 0
}

// Identity is what a successful credential check knows about the caller.
type Identity struct {
	UserID       string
	Username     string
	TOTPEnrolled bool
	// AccessToken is set when the backend already issued a token while
	// verifying the caller.
	AccessToken string
}

// Enrollment is the result of a registration.
type Enrollment struct {
	UserID   string
	Username string
	// ProvisioningArtifact is a QR image data URL, or an otpauth URI when the
	// identity store returns one.
	ProvisioningArtifact string
}
