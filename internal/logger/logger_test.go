package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := WithFields(context.Background(), zap.String("tool", "send_token"))
	InfoCtx(ctx, "submitted", zap.String("hash", "ABC"))
	Warn("plain")
	ErrorCtx(ctx, errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "submitted", entries[0].Message)
	assert.Equal(t, "send_token", entries[0].ContextMap()["tool"])
	assert.Equal(t, "ABC", entries[0].ContextMap()["hash"])
	assert.NotContains(t, entries[1].ContextMap(), "tool")
	assert.Equal(t, "boom", entries[2].Message)
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))
	var none context.Context
	assert.Same(t, Default(), FromContext(none))
}

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	require.NoError(t, Initialize(Config{Debug: true}))
	assert.True(t, Default().Core().Enabled(zapcore.DebugLevel))
	require.NoError(t, Initialize(Config{}))
	assert.False(t, Default().Core().Enabled(zapcore.DebugLevel))
}
