package logger

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: the logger is process-wide.

func TestInit_WritesToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	t.Cleanup(func() {
		Close()
		log.SetOutput(os.Stderr)
	})

	assert.Equal(t, filepath.Join(dir, "sim.log"), GetLogPath())
	LogError("shoe %d failed", 7)

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Logger initialized")
	assert.Contains(t, string(data), "[ERROR] shoe 7 failed")
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	LogInfo("run %s", "abc")
	LogWarn("slow")
	LogPanic("boom")

	out := buf.String()
	assert.Contains(t, out, "[INFO] run abc")
	assert.Contains(t, out, "[WARN] slow")
	assert.Contains(t, out, "[PANIC] boom")
	assert.Contains(t, out, "logger_test.go", "call site is reported, not the logger")
}
