package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetColor(false)
	SetWriterForAll(&buf)
	t.Cleanup(func() {
		SetWriterForAll(os.Stdout)
		SetVerbose(false)
	})
	return &buf
}

func TestDebugRequiresVerbose(t *testing.T) {
	buf := captureOutput(t)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "DEBUG shown 2")
}

func TestLevelsArePrefixed(t *testing.T) {
	buf := captureOutput(t)

	Info("updating %s", "sales")
	Warn("careful")
	Error("broken: %v", "disk")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INFO  updating sales")
	assert.Contains(t, lines[1], "WARN  careful")
	assert.Contains(t, lines[2], "ERROR broken: disk")
	assert.True(t, strings.HasPrefix(lines[0], "["))
}

func TestFatalCallsExitFunc(t *testing.T) {
	buf := captureOutput(t)
	code := -1
	SetExitFunc(func(c int) { code = c })
	t.Cleanup(func() { SetExitFunc(os.Exit) })

	Fatal("cannot continue")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "FATAL cannot continue")
}

func TestOpenLogFileReceivesAllLevels(t *testing.T) {
	captureOutput(t)
	path := filepath.Join(t.TempDir(), "modelsync.log")

	closer, err := OpenLogFile(path)
	require.NoError(t, err)
	Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO  to file")
}

func TestGetLogFromLevel(t *testing.T) {
	buf := captureOutput(t)

	GetLogFromLevel(WARN)("from %s", "level")
	assert.Contains(t, buf.String(), "WARN  from level")
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
