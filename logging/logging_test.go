package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsSplitByDestination(t *testing.T) {
	var file, console bytes.Buffer
	log := NewWithWriters(&file, &console, slog.LevelWarn).With("participant", "p01")

	log.Debug("pumped")
	log.Info("trial committed", "index", 3)
	log.Warn("marker failed")

	assert.Contains(t, file.String(), "msg=pumped")
	assert.Contains(t, file.String(), "index=3")
	assert.Contains(t, file.String(), "participant=p01")
	assert.NotContains(t, console.String(), "trial committed")
	assert.Contains(t, console.String(), "marker failed")
	assert.Contains(t, console.String(), "participant=p01")
}

func TestNewCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "p01.log")
	log, closeLog, err := New(path, false)
	require.NoError(t, err)
	log.WithGroup("engine").Debug("ready", "state", "idle")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "engine.state=idle")
}
