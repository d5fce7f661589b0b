package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("answer graded", "exercise_id", "ex-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "answer graded", rec["msg"])
	assert.Equal(t, "ex-1", rec["exercise_id"])
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "linguiz.log")
	logger, f, err := OpenFile(path, slog.LevelWarn)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("verification failed", "exercise_id", "ex-2")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "verification failed")
	assert.Contains(t, out, "exercise_id=ex-2")
	assert.False(t, strings.Contains(out, "dropped"))
}

func TestDefaultFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	p, err := DefaultFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/state", "linguiz", "linguiz.log"), p)
}
