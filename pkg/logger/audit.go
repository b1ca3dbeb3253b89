package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types.
const (
	EventLoginFirstAttempt     = "login_first_attempt"
	EventLoginConfirmed        = "login_confirmed"
	EventLoginMismatch         = "login_confirmation_mismatch"
	EventLoginLocked           = "login_locked"
	EventLoginSecondFactorFail = "login_second_factor_failed"
	EventLoginSuccess          = "login_success"
	EventLoginFailed           = "login_failed"
	EventAccountRegistered     = "account_registered"
	EventRegistrationFailed    = "registration_failed"
	EventRecordCreated         = "record_created"
	EventRecordUpdated         = "record_updated"
	EventRecordDeleted         = "record_deleted"
)

// AuditEvent describes one security relevant step. Usernames are masked
// before they are written.
type AuditEvent struct {
	EventType     string
	Username      string
	UserID        string
	SessionID     string
	Stage         string
	IPAddress     string
	Attempts      int
	Success       bool
	FailureReason string
}

// AuditLogger writes audit records through slog.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt records a login or registration step.
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Username != "" {
		attrs = append(attrs, slog.String("username", MaskUsername(event.Username)))
	}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.Stage != "" {
		attrs = append(attrs, slog.String("stage", event.Stage))
	}
	if event.Attempts > 0 {
		attrs = append(attrs, slog.Int("attempts", event.Attempts))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogRecordAction records a change to a stored credential record.
func (al *AuditLogger) LogRecordAction(ctx context.Context, eventType, userID, recordID string) {
	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("audit_type", "record"),
		slog.String("event_type", eventType),
		slog.String("user_id", userID),
		slog.String("record_id", recordID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}
