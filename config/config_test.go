package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langloc.yaml")
	yml := `
stimuli_dir: stimuli
fullscreen: false
keys:
  response: ["b", "y"]
text:
  thanks: "Merci !"
trigger_port: /dev/ttyUSB0
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "stimuli", cfg.StimuliDir)
	assert.False(t, cfg.Fullscreen)
	assert.Equal(t, []string{"b", "y"}, cfg.Keys.Response)
	assert.Equal(t, "escape", cfg.Keys.Abort, "unset keys keep their default")
	assert.Equal(t, "Merci !", cfg.Text.Thanks)
	assert.Equal(t, "Waiting for the scanner.", cfg.Text.Trigger)
	assert.Equal(t, "OrderAB.csv", cfg.ScannerTable)
	assert.Equal(t, "/dev/ttyUSB0", cfg.TriggerPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("font_size: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langloc.yaml")
	cfg := Default()
	cfg.StimuliDir = "audio"
	cfg.Database = "results.db"
	cfg.DLPDevice = "/dev/ttyUSB1"

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := Default()
	require.NoError(t, cfg.LoadCache())
	assert.Equal(t, Default(), cfg, "a missing cache leaves defaults alone")

	cfg.ScreenWidth = 1024
	cfg.ScreenHeight = 768
	require.NoError(t, cfg.SaveCache())

	again := Default()
	require.NoError(t, again.LoadCache())
	assert.Equal(t, 1024, again.ScreenWidth)
	assert.Equal(t, 768, again.ScreenHeight)
}

func TestCorruptCacheIsReported(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(CacheFile, []byte("screen_width: 800\nkeys: [not, a, map\n"), 0o644))

	cfg := Default()
	assert.Error(t, cfg.LoadCache())
	assert.Equal(t, Default(), cfg, "a corrupt cache is not half applied")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"abort key is a response key", func(c *Config) { c.Keys.Abort = "1" }},
		{"no response keys", func(c *Config) { c.Keys.Response = nil }},
		{"no trigger keys", func(c *Config) { c.Keys.Trigger = nil }},
		{"bad color", func(c *Config) { c.BGColor = "black" }},
		{"zero font", func(c *Config) { c.FontSize = 0 }},
		{"missing table", func(c *Config) { c.BackupTable = "" }},
		{"multi byte trigger", func(c *Config) { c.TriggerPort = "COM3"; c.TriggerByte = "55" }},
		{"bad dlp line", func(c *Config) { c.DLPDevice = "COM4"; c.DLPLine = "9" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseRGBA(t *testing.T) {
	c, err := ParseRGBA("10, 20, 30")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{10, 20, 30, 255}, c)

	c, err = ParseRGBA("0,0,0,0")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, c)

	_, err = ParseRGBA("256,0,0")
	assert.Error(t, err)
	_, err = ParseRGBA("1,2")
	assert.Error(t, err)
	_, err = ParseRGBA("12abc,0,0")
	assert.Error(t, err)
	_, err = ParseRGBA("1,2,3x")
	assert.Error(t, err)
}
