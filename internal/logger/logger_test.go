package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsCredentialKeys(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromCore(core).With("component", "auth")

	log.Info("session exchanged", "token", "abc123", "user_id", "u-1", "Authorization", "Bearer x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "[REDACTED]", fields["token"])
	require.Equal(t, "[REDACTED]", fields["Authorization"])
	require.Equal(t, "u-1", fields["user_id"])
	require.Equal(t, "auth", fields["component"])
}

func TestOddKeyValueListIsKept(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	require.Equal(t, []interface{}{"a", 1, "dangling"}, out)
}
