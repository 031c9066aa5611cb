package frametimeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultStartThreshold, cfg.StartThreshold)
	assert.Equal(t, DefaultPredictionRetention, cfg.PredictionRetention)
	assert.Equal(t, DefaultMaxDisplayFrames, cfg.MaxDisplayFrames)
}

func TestLoadConfig_PartialOverrideKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_display_frames": 128}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.MaxDisplayFrames)
	assert.Equal(t, DefaultStartThreshold, cfg.StartThreshold, "unlisted fields keep their default")
}

func TestLoadConfig_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"start_threshold": "not-a-duration"}`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsNonPositiveLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_display_frames": 0}`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
