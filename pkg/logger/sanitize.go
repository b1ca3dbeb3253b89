package logger

import (
	"strings"
	"unicode/utf8"
)

// MaskUsername keeps the first character of a username ("a****").
func MaskUsername(username string) string {
	n := utf8.RuneCountInString(username)
	if n <= 1 {
		return strings.Repeat("*", n)
	}
	first, _ := utf8.DecodeRuneInString(username)
	return string(first) + strings.Repeat("*", n-1)
}

var sensitiveParams = []string{
	"password",
	"token",
	"secret",
	"totp",
	"code",
	"phrase",
	"auth",
}

// SanitizeQueryString reports whether a raw query mentions a parameter that
// must not reach the logs.
func SanitizeQueryString(rawQuery string) bool {
	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
