package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/pkg/logger"
)

// Defaults applied when VerificationConfig leaves a field at zero.
const (
	DefaultMaxAttempts    = 3
	DefaultBackendTimeout = 5 * time.Second
	DefaultSessionTTL     = 10 * time.Minute
)

// VerificationConfig bounds the login protocol.
type VerificationConfig struct {
	MaxAttempts    int
	BackendTimeout time.Duration
	SessionTTL     time.Duration
}

func (c VerificationConfig) withDefaults() VerificationConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = DefaultBackendTimeout
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	return c
}

// loginSession is the pending verification of one login cycle. Every field
// below mu is guarded by it, and mu is held across backend calls so that
// duplicate submissions run one after the other.
type loginSession struct {
	mu sync.Mutex

	id       string
	stage    models.Stage
	first    models.Credential
	identity *models.Identity
	attempts int
	lastSeen time.Time
	closed   bool
}

// clear discards the pending credential and returns to the first stage.
func (s *loginSession) clear() {
	s.stage = models.StageAwaitingFirstAttempt
	s.first = models.Credential{}
	s.identity = nil
	s.attempts = 0
}

// VerificationService drives the double-entry login protocol: a first
// credential check, a confirming re-entry with lockout, and an optional TOTP
// challenge.
type VerificationService struct {
	checker  CredentialChecker
	verifier SecondFactorVerifier
	issuer   SessionIssuer
	audit    *logger.AuditLogger
	logger   *slog.Logger
	cfg      VerificationConfig
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*loginSession
}

// NewVerificationService creates a VerificationService. Zero fields of cfg
// take their defaults.
func NewVerificationService(
	checker CredentialChecker,
	verifier SecondFactorVerifier,
	issuer SessionIssuer,
	cfg VerificationConfig,
	log *slog.Logger,
) *VerificationService {
	return &VerificationService{
		checker:  checker,
		verifier: verifier,
		issuer:   issuer,
		audit:    logger.NewAuditLogger(log),
		logger:   log,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		sessions: make(map[string]*loginSession),
	}
}

// MaxAttempts returns the confirmation mismatch limit.
func (s *VerificationService) MaxAttempts() int {
	return s.cfg.MaxAttempts
}

// ============================================================================
// Transitions
// ============================================================================

// SubmitCredentials advances a login session with a username/password pair.
// An empty sessionID starts a new session. Depending on the stage the pair is
// either checked against the backend or compared with the first entry.
func (s *VerificationService) SubmitCredentials(ctx context.Context, sessionID string, cred models.Credential) (*models.LoginOutcome, error) {
	if cred.Empty() {
		return nil, models.ErrMissingField
	}

	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	switch sess.stage {
	case models.StageAwaitingFirstAttempt:
		out, err := s.firstAttempt(ctx, sess, cred)
		if err != nil && sessionID == "" {
			s.discard(sess)
		}
		return out, err
	case models.StageAwaitingConfirmation:
		return s.confirm(ctx, sess, cred)
	default:
		return nil, models.ErrUnexpectedStage
	}
}

// SubmitSecondFactor checks a TOTP code for a session waiting on one. A wrong
// code leaves the session where it is and does not count as an attempt.
func (s *VerificationService) SubmitSecondFactor(ctx context.Context, sessionID, code string) (*models.LoginOutcome, error) {
	if sessionID == "" || code == "" {
		return nil, models.ErrMissingField
	}

	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.stage != models.StageAwaitingSecondFactor {
		return nil, models.ErrUnexpectedStage
	}

	if !auth.ValidCodeFormat(code) {
		s.logSecondFactorFailure(ctx, sess, "malformed code")
		return nil, models.ErrInvalidSecondFactor
	}

	// The call may outlive this lock on timeout; hand it a snapshot.
	pending := sess.identity
	identity, err := callBackend(ctx, s.cfg.BackendTimeout, func(ctx context.Context) (*models.Identity, error) {
		return s.verifier.VerifySecondFactor(ctx, pending, code)
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidSecondFactor) {
			s.logSecondFactorFailure(ctx, sess, "invalid code")
		} else {
			s.logger.Warn("second factor backend call failed",
				slog.String("session_id", sess.id),
				slog.Any("error", err))
		}
		return nil, err
	}
	if identity == nil {
		identity = pending
	}

	return s.authenticate(ctx, sess, identity)
}

// Reset discards any pending state of a session. Unknown sessions are ignored.
func (s *VerificationService) Reset(sessionID string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	sess.clear()
	sess.closed = true
	sess.mu.Unlock()
}

// Stage reports where a session currently is.
func (s *VerificationService) Stage(sessionID string) (models.Stage, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return models.StageAwaitingFirstAttempt, err
	}
	defer sess.mu.Unlock()
	return sess.stage, nil
}

// ActiveSessions returns the number of sessions held in memory.
func (s *VerificationService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SweepExpired removes sessions idle for longer than the session TTL and
// returns how many were removed. Sessions busy with a backend call are skipped.
func (s *VerificationService) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if now.Sub(sess.lastSeen) > s.cfg.SessionTTL {
			sess.clear()
			sess.closed = true
			delete(s.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}

// ============================================================================
// Stage handlers (called with sess.mu held)
// ============================================================================

func (s *VerificationService) firstAttempt(ctx context.Context, sess *loginSession, cred models.Credential) (*models.LoginOutcome, error) {
	identity, err := callBackend(ctx, s.cfg.BackendTimeout, func(ctx context.Context) (*models.Identity, error) {
		return s.checker.CheckCredentials(ctx, cred.Username, cred.Password)
	})
	if err != nil {
		reason := "backend error"
		if errors.Is(err, models.ErrInvalidCredentials) {
			reason = "invalid credentials"
		}
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
			EventType:     logger.EventLoginFailed,
			Username:      cred.Username,
			SessionID:     sess.id,
			Stage:         sess.stage.String(),
			IPAddress:     ClientIP(ctx),
			FailureReason: reason,
		})
		return nil, err
	}
	if identity == nil {
		return nil, models.ErrBackendUnavailable
	}

	sess.first = cred
	sess.identity = identity
	sess.attempts = 0
	sess.stage = models.StageAwaitingConfirmation
	sess.lastSeen = s.now()

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
		EventType: logger.EventLoginFirstAttempt,
		Username:  cred.Username,
		UserID:    identity.UserID,
		SessionID: sess.id,
		Stage:     sess.stage.String(),
		IPAddress: ClientIP(ctx),
		Success:   true,
	})

	return s.outcome(sess, ""), nil
}

func (s *VerificationService) confirm(ctx context.Context, sess *loginSession, cred models.Credential) (*models.LoginOutcome, error) {
	if !sameCredential(sess.first, cred) {
		sess.attempts++
		sess.lastSeen = s.now()
		attemptErr := &models.AttemptError{Attempts: sess.attempts, Max: s.cfg.MaxAttempts}

		if attemptErr.Locked() {
			username := sess.first.Username
			sess.clear()
			s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
				EventType:     logger.EventLoginLocked,
				Username:      username,
				SessionID:     sess.id,
				Stage:         models.StageLocked.String(),
				IPAddress:     ClientIP(ctx),
				Attempts:      attemptErr.Attempts,
				FailureReason: "confirmation attempts exhausted",
			})
			return nil, attemptErr
		}

		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
			EventType:     logger.EventLoginMismatch,
			Username:      sess.first.Username,
			SessionID:     sess.id,
			Stage:         sess.stage.String(),
			IPAddress:     ClientIP(ctx),
			Attempts:      sess.attempts,
			FailureReason: "confirmation mismatch",
		})
		return nil, attemptErr
	}

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
		EventType: logger.EventLoginConfirmed,
		Username:  sess.first.Username,
		UserID:    sess.identity.UserID,
		SessionID: sess.id,
		Stage:     sess.stage.String(),
		IPAddress: ClientIP(ctx),
		Success:   true,
	})

	if sess.identity.TOTPEnrolled {
		sess.stage = models.StageAwaitingSecondFactor
		sess.lastSeen = s.now()
		return s.outcome(sess, ""), nil
	}

	return s.authenticate(ctx, sess, sess.identity)
}

// authenticate issues the access token and closes the session. The session is
// untouched when the issuer fails.
func (s *VerificationService) authenticate(ctx context.Context, sess *loginSession, identity *models.Identity) (*models.LoginOutcome, error) {
	token := identity.AccessToken
	if token == "" {
		var err error
		token, err = callBackend(ctx, s.cfg.BackendTimeout, func(ctx context.Context) (string, error) {
			return s.issuer.IssueToken(ctx, identity)
		})
		if err != nil {
			s.logger.Error("failed to issue access token",
				slog.String("session_id", sess.id),
				slog.Any("error", err))
			return nil, err
		}
	}

	sess.stage = models.StageAuthenticated
	out := s.outcome(sess, token)

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
		EventType: logger.EventLoginSuccess,
		Username:  identity.Username,
		UserID:    identity.UserID,
		SessionID: sess.id,
		Stage:     sess.stage.String(),
		IPAddress: ClientIP(ctx),
		Success:   true,
	})

	s.discard(sess)
	return out, nil
}

// discard closes a locked session and drops it from the registry.
func (s *VerificationService) discard(sess *loginSession) {
	sess.clear()
	sess.closed = true
	s.mu.Lock()
	if cur, ok := s.sessions[sess.id]; ok && cur == sess {
		delete(s.sessions, sess.id)
	}
	s.mu.Unlock()
}

func (s *VerificationService) logSecondFactorFailure(ctx context.Context, sess *loginSession, reason string) {
	sess.lastSeen = s.now()
	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{
		EventType:     logger.EventLoginSecondFactorFail,
		Username:      sess.first.Username,
		UserID:        sess.identity.UserID,
		SessionID:     sess.id,
		Stage:         sess.stage.String(),
		IPAddress:     ClientIP(ctx),
		FailureReason: reason,
	})
}

// ============================================================================
// Registry
// ============================================================================

// acquire returns the session locked. An empty id creates a new session.
// Sessions removed while the caller waited for the lock count as expired.
func (s *VerificationService) acquire(sessionID string) (*loginSession, error) {
	if sessionID == "" {
		sess := &loginSession{
			id:       uuid.New().String(),
			stage:    models.StageAwaitingFirstAttempt,
			lastSeen: s.now(),
		}
		sess.mu.Lock()
		s.mu.Lock()
		s.sessions[sess.id] = sess
		s.mu.Unlock()
		return sess, nil
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, models.ErrSessionExpired
	}

	sess.mu.Lock()
	if sess.closed || s.now().Sub(sess.lastSeen) > s.cfg.SessionTTL {
		sess.mu.Unlock()
		s.mu.Lock()
		if cur, ok := s.sessions[sessionID]; ok && cur == sess {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
		return nil, models.ErrSessionExpired
	}
	return sess, nil
}

func (s *VerificationService) outcome(sess *loginSession, token string) *models.LoginOutcome {
	remaining := s.cfg.MaxAttempts - sess.attempts
	if remaining < 0 {
		remaining = 0
	}
	return &models.LoginOutcome{
		SessionID:         sess.id,
		Stage:             sess.stage,
		Attempts:          sess.attempts,
		AttemptsRemaining: remaining,
		AccessToken:       token,
		Username:          sess.first.Username,
	}
}

// sameCredential compares both fields byte for byte in constant time.
func sameCredential(a, b models.Credential) bool {
	user := subtle.ConstantTimeCompare([]byte(a.Username), []byte(b.Username))
	pass := subtle.ConstantTimeCompare([]byte(a.Password), []byte(b.Password))
	return user&pass == 1
}
