package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims of an access token.
type TokenClaims struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Credential is one submitted username/password pair.
type Credential struct {
	Username string
	Password string
}

// Empty reports whether either field is blank.
func (c Credential) Empty() bool {
	return c.Username == "" || c.Password == ""
}
