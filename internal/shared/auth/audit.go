package auth

import "sync/atomic"

// AuditEvent describes a single authorization decision.
type AuditEvent struct {
	Action  string   `json:"action"`
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
	Allowed bool     `json:"allowed"`
}

// AuditRecorder receives authorization decisions.
type AuditRecorder func(AuditEvent)

var auditRecorder atomic.Value

func init() {
	auditRecorder.Store(AuditRecorder(func(AuditEvent) {}))
}

// SetAuditRecorder installs recorder as the process-wide audit sink.
func SetAuditRecorder(recorder AuditRecorder) {
	if recorder == nil {
		recorder = func(AuditEvent) {}
	}
	auditRecorder.Store(recorder)
}

func recordAudit(event AuditEvent) {
	auditRecorder.Load().(AuditRecorder)(event)
}

// NewAuditEvent builds an AuditEvent for actor.
func NewAuditEvent(action string, actor Actor, allowed bool) AuditEvent {
	return AuditEvent{
		Action:  action,
		Subject: actor.Subject,
		Roles:   append([]string(nil), actor.Roles...),
		Allowed: allowed,
	}
}
