package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"":       zapcore.InfoLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("loud")
	require.False(t, ok)
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, zapcore.DebugLevel)

	ctx := WithKV(ToContext(context.Background(), l), "device", "/dev/ttyTEST")
	InfoKV(ctx, "frame", "seq", 3)
	DebugKV(ctx, "resync", "dropped", 2)

	out := buf.String()
	require.Contains(t, out, "frame")
	require.Contains(t, out, "/dev/ttyTEST")
	require.Contains(t, out, "resync")
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
