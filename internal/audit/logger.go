// Package audit writes authorization decisions to the structured log.
package audit

import (
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/shared/auth"
)

// Logger records audit events.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a new audit logger.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("audit")}
}

// Setup installs the logger as the auth package's audit sink.
func (l *Logger) Setup() {
	auth.SetAuditRecorder(l.Record)
}

// Record logs one authorization decision. Denials log at warn.
func (l *Logger) Record(event auth.AuditEvent) {
	fields := []zap.Field{
		zap.String("audit.action", event.Action),
		zap.String("audit.subject", event.Subject),
		zap.Strings("audit.roles", event.Roles),
		zap.Bool("audit.allowed", event.Allowed),
	}
	if event.Allowed {
		l.logger.Info("authorization allowed", fields...)
		return
	}
	l.logger.Warn("authorization denied", fields...)
}
