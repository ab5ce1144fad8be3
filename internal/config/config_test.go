package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/predictive_maintenance.csv", cfg.DataPath)
	assert.Equal(t, "results/isolation_forest_model.gob", cfg.ModelPath)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "Air temperature [K]", cfg.TempColumn)
	assert.Equal(t, "Rotational speed [rpm]", cfg.RPMColumn)
	assert.Equal(t, 100, cfg.Trees)
	assert.Equal(t, 256, cfg.SampleSize)
	assert.Equal(t, 0.05, cfg.Contamination)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 0.5, cfg.NoiseBound)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FACTORYGUARD_TREES", "25")
	t.Setenv("FACTORYGUARD_LISTEN_ADDR", ":9000")
	t.Setenv("FACTORYGUARD_NOISE_BOUND", "2.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Trees)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 2.5, cfg.NoiseBound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contamination: 0.1\ntrees: 50\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.1, cfg.Contamination)
	assert.Equal(t, 50, cfg.Trees)
	// Untouched keys keep their defaults.
	assert.Equal(t, 256, cfg.SampleSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
