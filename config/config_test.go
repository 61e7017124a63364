package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 2.5, cfg.Segmentation.MinDuration)
	assert.Equal(t, 15.0, cfg.Segmentation.MaxDuration)
	assert.Equal(t, 0.82, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, "0.0.0.0:7883", cfg.Addr())
	assert.Equal(t, 60*time.Second, cfg.ServiceTimeout())
	assert.Equal(t, filepath.Join("data", "outputs", "reports"), cfg.ReportDir())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
segmentation:
  max_duration: 20
matching:
  similarity_threshold: 0.9
services:
  asr:
    url: http://asr:8000
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Segmentation.MaxDuration)
	assert.Equal(t, 2.5, cfg.Segmentation.MinDuration)
	assert.Equal(t, 0.9, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, "http://asr:8000", cfg.Services.ASR.URL)
	assert.Empty(t, cfg.Services.Sentiment.URL)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SPEAKERAI_SERVER_PORT", "9000")
	t.Setenv("SPEAKERAI_SERVICES_SENTIMENT_URL", "http://vader:5000")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://vader:5000", cfg.Services.Sentiment.URL)
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("matching:\n  similarity_threshold: 1.5\n"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "similarity_threshold")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))
	assert.Error(t, WriteDefault(path), "existing file is not overwritten")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.Data = filepath.Join(root, "data")
	cfg.Paths.Outputs = filepath.Join(root, "data", "outputs")
	cfg.Paths.Uploads = filepath.Join(root, "data", "uploads")
	cfg.Paths.Database = filepath.Join(root, "db", "speakers.db")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.TranscriptDir(), cfg.ReportDir(), cfg.Paths.Uploads, filepath.Join(root, "db")} {
		assert.DirExists(t, dir)
	}
}
