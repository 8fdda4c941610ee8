package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 79.0, cfg.Table.Thickness)
	assert.Equal(t, TableBelow, cfg.Table.Side)
	assert.Equal(t, [2]int{3, 1}, cfg.Body.ClosingRadius)
	assert.Equal(t, 0.8, cfg.Holes.GradientSigma)
	assert.Equal(t, 25.0, cfg.Holes.FarValue)
	assert.Equal(t, 5.0, cfg.Holes.CurvatureScaling)
	assert.Equal(t, 2000, cfg.Holes.Iterations)
	assert.Equal(t, 0.9, cfg.Holes.MinRoundness)
	assert.Equal(t, 3, cfg.Otsu.Thresholds)
	assert.Equal(t, 0.86, cfg.Otsu.MinRoundness)
	assert.Equal(t, 8.0, cfg.Blob.MinDistBetweenBlobs)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("table:\n  thickness: 72.3\nholes:\n  minRoundness: 0.86\n  variant: otsu\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 72.3, cfg.Table.Thickness)
	assert.Equal(t, 0.86, cfg.Holes.MinRoundness)
	assert.Equal(t, VariantOtsu, cfg.Holes.Variant)

	// untouched sections keep their defaults
	assert.Equal(t, TableBelow, cfg.Table.Side)
	assert.Equal(t, 2000, cfg.Holes.Iterations)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table:\n  side: sideways\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.Holes.Polarity = PolarityDark

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Processing.NumCores)
	assert.Equal(t, PolarityDark, loaded.Holes.Polarity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero cores", func(c *Config) { c.Processing.NumCores = 0 }},
		{"negative thickness", func(c *Config) { c.Table.Thickness = -1 }},
		{"unknown variant", func(c *Config) { c.Holes.Variant = "watershed" }},
		{"unknown polarity", func(c *Config) { c.Holes.Polarity = "grey" }},
		{"zero sigma", func(c *Config) { c.Holes.GradientSigma = 0 }},
		{"zero time step", func(c *Config) { c.Holes.TimeStep = 0 }},
		{"too few bins", func(c *Config) { c.Otsu.Bins = 3 }},
		{"inverted blob thresholds", func(c *Config) { c.Blob.MinThreshold = 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
