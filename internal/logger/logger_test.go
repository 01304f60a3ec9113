package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_FallsBackToInfo(t *testing.T) {
	log := New(Config{Level: "not-a-level", Encoding: "console"})
	require.NotNil(t, log)
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestFromContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	FromContext(ctx, base).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestFromContext_WithoutRequestID(t *testing.T) {
	base := zap.NewNop()
	require.Same(t, base, FromContext(context.Background(), base))
}
