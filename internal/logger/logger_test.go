package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closer, err := NewSystemLogger(dir, slog.LevelInfo)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("server ready", slog.Int("port", 9090))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "system.log"))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "server ready", entry["msg"])
	assert.EqualValues(t, 9090, entry["port"])
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, slog.LevelDebug)

	log.Debug("copied", slog.String("path", "index.html"))

	assert.Contains(t, buf.String(), "msg=copied")
	assert.Contains(t, buf.String(), "path=index.html")
}
