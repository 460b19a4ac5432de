package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/VXerys/artconnect-crm-sub001/internal/shared/auth"
)

func TestRecord(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLogger(zap.New(core))

	l.Record(auth.AuditEvent{Action: "GET:/x", Subject: "a", Roles: []string{"artist"}, Allowed: true})
	l.Record(auth.AuditEvent{Action: "POST:/x", Subject: "b", Allowed: false})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "POST:/x", entries[1].ContextMap()["audit.action"])
}
