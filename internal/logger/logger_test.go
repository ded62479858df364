package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 这些测试修改全局日志器，不能并行

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	require.NoError(t, Init(Options{Level: "debug", File: path}))
	t.Cleanup(Close)

	assert.Equal(t, path, GetLogPath())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	LogInfo("lobby %d started", 3)
	LogError("send failed: %s", "buffer full")
	LogPanic("boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "logger initialized")
	assert.Contains(t, content, "lobby 3 started")
	assert.Contains(t, content, "send failed: buffer full")
	assert.Contains(t, content, "panic: boom")
	assert.Contains(t, content, `"stack"`)
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestInit_DefaultsToInfo(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
