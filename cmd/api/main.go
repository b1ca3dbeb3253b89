package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/backend"
	"github.com/BradenHooton/passguard/internal/background"
	"github.com/BradenHooton/passguard/internal/config"
	"github.com/BradenHooton/passguard/internal/database"
	"github.com/BradenHooton/passguard/internal/handlers"
	middlewareCustom "github.com/BradenHooton/passguard/internal/middleware"
	"github.com/BradenHooton/passguard/internal/repositories"
	"github.com/BradenHooton/passguard/internal/routes"
	"github.com/BradenHooton/passguard/internal/services"
	"github.com/BradenHooton/passguard/pkg/crypto"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
	"github.com/BradenHooton/passguard/pkg/password"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logger.Warn("unknown LOG_LEVEL, using info", slog.String("log_level", cfg.Server.LogLevel))
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.Bool("remote_backend", cfg.Remote()))

	proxies, err := pkghttp.NewProxyTrust(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Password engine
	words := password.DefaultWords()
	if cfg.Generator.DicewarePath != "" {
		words, err = password.LoadWordlist(cfg.Generator.DicewarePath)
		if err != nil {
			logger.Error("failed to load diceware word list", slog.Any("error", err))
			os.Exit(1)
		}
	}
	policy := password.NewPolicy(cfg.Policy.MinPasswordLength)
	generator := password.NewGenerator(words, password.WithPolicy(policy))
	logger.Info("password generator ready", slog.Int("words", generator.WordCount()))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Identity backend: remote HTTP service or the local store.
	var (
		checker  services.CredentialChecker
		verifier services.SecondFactorVerifier
		issuer   services.SessionIssuer
		store    services.IdentityStore
		records  *handlers.RecordHandler
		health   handlers.HealthChecker
		meTokens *auth.TokenManager
	)

	if cfg.Remote() {
		client := backend.NewClient(cfg.Backend.URL, logger)
		checker, verifier, issuer, store = client, client, client, client
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := database.Open(ctx, &cfg.Database, logger)
		cancel()
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()
		health = db

		sealer, err := crypto.NewSealer(cfg.Auth.EncryptionKey)
		if err != nil {
			logger.Error("failed to initialize sealer", slog.Any("error", err))
			os.Exit(1)
		}

		timingDelay := auth.NewTimingDelay(auth.TimingConfig{
			BaseDelay:   time.Duration(cfg.Auth.TimingBaseDelayMs) * time.Millisecond,
			RandomDelay: time.Duration(cfg.Auth.TimingRandomDelayMs) * time.Millisecond,
		})
		totpManager := auth.NewTOTPManager(sealer, cfg.Auth.TOTPIssuer, cfg.Auth.TOTPSkew)

		accounts := services.NewAccountService(repositories.NewUserRepository(db), totpManager, timingDelay, logger)
		checker, verifier, store = accounts, accounts, accounts
		issuer = tokenManager
		meTokens = tokenManager

		recordService := services.NewRecordService(repositories.NewRecordRepository(db), sealer, logger)
		records = handlers.NewRecordHandler(recordService, logger)
	}

	// Initialize services
	verification := services.NewVerificationService(checker, verifier, issuer, services.VerificationConfig{
		MaxAttempts:    cfg.Auth.LoginMaxAttempts,
		BackendTimeout: cfg.Auth.BackendTimeout,
		SessionTTL:     cfg.Auth.LoginSessionTTL,
	}, logger)
	enrollment := services.NewEnrollmentService(store, policy, cfg.Auth.BackendTimeout, logger)

	cleanupManager := background.NewCleanupManager(verification, logger, cfg.Auth.SessionCleanupInterval)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:         handlers.NewAuthHandler(verification, enrollment, proxies, logger),
		Generator:    handlers.NewGeneratorHandler(generator, logger),
		Records:      records,
		TokenManager: meTokens,
		Proxies:      proxies,
	})
	router.Get("/health", handlers.Health(health))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully", slog.Int("login_sessions_dropped", verification.ActiveSessions()))
}
