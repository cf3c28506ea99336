package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscard(t *testing.T) {
	logger, closer, err := New("", true)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	assert.NoError(t, closer.Close())
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closer, err := New(path, false)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("opened file", "path", "a.csv")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "opened file")
	assert.Contains(t, string(data), "path=a.csv")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewHandlerDebug(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, true)).Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
