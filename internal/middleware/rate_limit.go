package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/BradenHooton/passguard/internal/auth"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit allows 10 requests per minute per IP. One login takes
// two or three requests.
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 10}
}

// DefaultGeneratorRateLimit allows 60 generation or evaluation requests per
// minute per IP.
func DefaultGeneratorRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 60}
}

// DefaultRecordRateLimit allows 120 record requests per minute per user.
func DefaultRecordRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 120}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
}

// KeyByClientIP keys requests on the client address as resolved by proxies.
// Forwarding headers from untrusted peers are ignored.
func KeyByClientIP(proxies *pkghttp.ProxyTrust) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		return proxies.ClientIP(r), nil
	}
}

// RateLimitByIP limits requests per client IP.
func RateLimitByIP(config RateLimitConfig, proxies *pkghttp.ProxyTrust) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(KeyByClientIP(proxies)),
		httprate.WithLimitHandler(writeRateLimited),
	)
}

// RateLimitByUser limits requests per authenticated user and falls back to
// the client IP when no claims are present. It must run after
// auth.AuthMiddleware.
func RateLimitByUser(config RateLimitConfig, proxies *pkghttp.ProxyTrust) func(next http.Handler) http.Handler {
	byIP := KeyByClientIP(proxies)
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if claims := auth.GetUserFromContext(r); claims != nil {
				return "user:" + claims.UserID, nil
			}
			return byIP(r)
		}),
		httprate.WithLimitHandler(writeRateLimited),
	)
}
