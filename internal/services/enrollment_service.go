package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/passguard/internal/models"
	pkgauth "github.com/BradenHooton/passguard/pkg/auth"
	"github.com/BradenHooton/passguard/pkg/logger"
	"github.com/BradenHooton/passguard/pkg/password"
)

// EnrollmentService registers accounts. The password policy is checked
// locally before the identity store is contacted.
type EnrollmentService struct {
	store   IdentityStore
	policy  password.Policy
	timeout time.Duration
	audit   *logger.AuditLogger
	logger  *slog.Logger
}

// NewEnrollmentService creates an EnrollmentService. A non-positive timeout
// selects DefaultBackendTimeout.
func NewEnrollmentService(store IdentityStore, policy password.Policy, timeout time.Duration, log *slog.Logger) *EnrollmentService {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &EnrollmentService{
		store:   store,
		policy:  policy,
		timeout: timeout,
		audit:   logger.NewAuditLogger(log),
		logger:  log,
	}
}

// Policy returns the policy registrations are checked against.
func (s *EnrollmentService) Policy() password.Policy {
	return s.policy
}

// Register creates an account for username. An empty password is reported as
// a weak password listing every requirement; one longer than the hash input
// limit is an invalid parameter.
func (s *EnrollmentService) Register(ctx context.Context, username, pw string) (*models.Enrollment, error) {
	if username == "" {
		return nil, models.ErrMissingField
	}

	if a := s.policy.Evaluate(pw); !a.Satisfied() {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
			EventType:     logger.EventRegistrationFailed,
			Username:      username,
			IPAddress:     ClientIP(ctx),
			FailureReason: "weak password",
		})
		return nil, &models.WeakPasswordError{Missing: a.Missing}
	}
	if len(pw) > pkgauth.MaxPasswordBytes {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
			EventType:     logger.EventRegistrationFailed,
			Username:      username,
			IPAddress:     ClientIP(ctx),
			FailureReason: "password too long",
		})
		return nil, fmt.Errorf("%w: password must be at most %d bytes", models.ErrInvalidParameter, pkgauth.MaxPasswordBytes)
	}

	enrollment, err := callBackend(ctx, s.timeout, func(ctx context.Context) (*models.Enrollment, error) {
		return s.store.CreateAccount(ctx, username, pw)
	})
	if err != nil {
		reason := "backend error"
		if errors.Is(err, models.ErrConflict) {
			reason = "username taken"
		} else {
			s.logger.Error("failed to create account", slog.Any("error", err))
		}
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
			EventType:     logger.EventRegistrationFailed,
			Username:      username,
			IPAddress:     ClientIP(ctx),
			FailureReason: reason,
		})
		return nil, err
	}

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
		EventType: logger.EventAccountRegistered,
		Username:  username,
		UserID:    enrollment.UserID,
		IPAddress: ClientIP(ctx),
		Success:   true,
	})
	return enrollment, nil
}
