package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/models"
	pkgauth "github.com/BradenHooton/passguard/pkg/auth"
)

// UserRepository is the storage the local identity backend needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TOTPProvider provisions and checks second factor secrets.
type TOTPProvider interface {
	Provision(userID, accountName string) (*auth.TOTPEnrollment, error)
	Validate(userID string, secretEncrypted []byte, code string) (bool, error)
}

// AccountService is the local identity backend: bcrypt hashed passwords and
// sealed TOTP secrets in Postgres. It implements CredentialChecker,
// SecondFactorVerifier and IdentityStore.
type AccountService struct {
	users  UserRepository
	totp   TOTPProvider
	timing *auth.TimingDelay
	logger *slog.Logger
}

// NewAccountService creates an AccountService. A nil timing skips failure
// padding.
func NewAccountService(users UserRepository, totp TOTPProvider, timing *auth.TimingDelay, logger *slog.Logger) *AccountService {
	if timing == nil {
		timing = auth.NewTimingDelay(auth.TimingConfig{})
	}
	return &AccountService{
		users:  users,
		totp:   totp,
		timing: timing,
		logger: logger,
	}
}

// CheckCredentials verifies username and password. Unknown usernames and
// wrong passwords take the same time and return the same error.
func (s *AccountService) CheckCredentials(ctx context.Context, username, password string) (*models.Identity, error) {
	start := time.Now()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkgauth.CompareDummy(password)
			s.timing.WaitFrom(ctx, start)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to load user", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.timing.WaitFrom(ctx, start)
		return nil, models.ErrInvalidCredentials
	}

	return &models.Identity{
		UserID:       user.ID,
		Username:     user.Username,
		TOTPEnrolled: user.TOTPEnrolled(),
	}, nil
}

// VerifySecondFactor checks code against the secret enrolled for identity.
func (s *AccountService) VerifySecondFactor(ctx context.Context, identity *models.Identity, code string) (*models.Identity, error) {
	if identity == nil {
		return nil, models.ErrInvalidSecondFactor
	}

	user, err := s.users.GetByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidSecondFactor
		}
		return nil, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}
	if !user.TOTPEnrolled() {
		return nil, models.ErrInvalidSecondFactor
	}

	valid, err := s.totp.Validate(user.ID, user.TOTPSecretEncrypted, code)
	if err != nil {
		s.logger.Error("failed to validate TOTP code",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}
	if !valid {
		return nil, models.ErrInvalidSecondFactor
	}
	return identity, nil
}

// CreateAccount stores a new user and enrolls a TOTP secret for it. The
// returned artifact is the QR code of the provisioning URI.
func (s *AccountService) CreateAccount(ctx context.Context, username, password string) (*models.Enrollment, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		if errors.Is(err, pkgauth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most %d bytes", models.ErrInvalidParameter, pkgauth.MaxPasswordBytes)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.NewString()
	enrollment, err := s.totp.Provision(id, username)
	if err != nil {
		return nil, fmt.Errorf("failed to provision second factor: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		ID:                  id,
		Username:            username,
		PasswordHash:        hash,
		TOTPSecretEncrypted: enrollment.SecretEncrypted,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}

	s.logger.Info("account created", slog.String("user_id", user.ID))

	return &models.Enrollment{
		UserID:               user.ID,
		Username:             user.Username,
		ProvisioningArtifact: enrollment.QRCode,
	}, nil
}
