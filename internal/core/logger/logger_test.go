package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-gin-blog/internal/core/config"
)

func TestFromConfigWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blog.log")
	l, cleanup := FromConfig(config.Log{
		Level: "info",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("post created", zap.String("id", "p1"))
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"post created"`)
	assert.Contains(t, string(b), `"id":"p1"`)
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("verbose", true)
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestToWriterTrimsNewlines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)
	_, err := w.Write([]byte("[GIN-debug] route registered\n"))
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "[GIN-debug] route registered", e.Message)
	assert.Equal(t, zapcore.WarnLevel, e.Level)
}
