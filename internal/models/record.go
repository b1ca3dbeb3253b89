package models

import "time"

// Record is a saved site credential owned by one user.
type Record struct {
	ID       string
	UserID   string
	Site     string
	Login    string
	Password string
	Notes    string
	// PasswordEncrypted is the sealed form of Password as stored.
	PasswordEncrypted []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
