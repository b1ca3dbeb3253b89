package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/handlers"
	"github.com/BradenHooton/passguard/internal/middleware"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

// Handlers groups everything RegisterRoutes mounts. Records and TokenManager
// are nil when accounts live in a remote backend; the record store and
// /auth/me are not mounted then.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Generator    *handlers.GeneratorHandler
	Records      *handlers.RecordHandler
	TokenManager *auth.TokenManager
	// Proxies resolves client addresses for per-IP limits. Nil trusts no
	// forwarding headers.
	Proxies *pkghttp.ProxyTrust
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers) {
	authLimit := middleware.RateLimitByIP(middleware.DefaultAuthRateLimit(), h.Proxies)
	generatorLimit := middleware.RateLimitByIP(middleware.DefaultGeneratorRateLimit(), h.Proxies)

	// Public routes - no authentication required
	router.Route("/auth", func(r chi.Router) {
		r.With(authLimit).Post("/register", h.Auth.Register)
		r.With(authLimit).Post("/login", h.Auth.Login)
		r.With(authLimit).Post("/login/totp", h.Auth.LoginTOTP)
		r.Post("/login/reset", h.Auth.ResetLogin)

		if h.TokenManager != nil {
			r.With(auth.AuthMiddleware(h.TokenManager)).Get("/me", h.Auth.Me)
		}
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(generatorLimit)
		r.Get("/generate", h.Generator.Generate)
		r.Get("/generate_diceware", h.Generator.GenerateDiceware)
		r.Post("/improve_password", h.Generator.ImprovePassword)
		r.Post("/generate_from_phrase", h.Generator.GenerateFromPhrase)
		r.Post("/evaluate_password", h.Generator.EvaluatePassword)
		r.Post("/test_password", h.Generator.TestPassword)
		r.Get("/guidelines", handlers.Guidelines)
	})

	// Protected routes - authentication required
	if h.Records != nil && h.TokenManager != nil {
		router.Route("/passwords", func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.TokenManager))
			r.Use(middleware.RateLimitByUser(middleware.DefaultRecordRateLimit(), h.Proxies))
			r.Get("/", h.Records.List)
			r.Post("/", h.Records.Create)
			r.Put("/{id}", h.Records.Update)
			r.Delete("/{id}", h.Records.Delete)
		})
	}
}
