package logger

import (
	"context"
	"log/slog"
	"time"
)

// AttemptEvent describes one processed login attempt for the audit stream.
type AttemptEvent struct {
	Login     string
	UserID    *int64
	IP        string
	Succeeded bool
	Reason    string
}

// AuditLogger emits structured audit records alongside the persistent
// ledger. It is supplementary: the login_log table remains the source of
// truth.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAttempt logs the outcome of a login attempt. The login name is masked
// so the audit stream does not enumerate valid accounts.
func (al *AuditLogger) LogAttempt(event AttemptEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "login"),
		slog.String("login", MaskedLogin(event.Login)),
		slog.String("ip", event.IP),
		slog.Bool("succeeded", event.Succeeded),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != nil {
		attrs = append(attrs, slog.Int64("user_id", *event.UserID))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	if event.Succeeded {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}
