package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, 0.03, cfg.LearningRate)
	assert.Equal(t, 0.05, cfg.InitRange)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, Architecture{ConvKernels: 10, KernelSize: 20, PoolSize: 5, HiddenNodes: 100}, cfg.Architecture)
}

func TestParse(t *testing.T) {
	src := `
image: pavia.txt
iterations: 250
learning_rate: 0.1
seed: 42
architecture:
  hidden_nodes: 64
`
	cfg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "pavia.txt", cfg.ImagePath)
	assert.Equal(t, 250, cfg.Iterations)
	assert.Equal(t, 0.1, cfg.LearningRate)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 64, cfg.Architecture.HiddenNodes)

	// Untouched keys keep their defaults.
	assert.Equal(t, "salinas_train2.txt", cfg.TrainDataPath)
	assert.Equal(t, 20, cfg.Architecture.KernelSize)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse(strings.NewReader("iteration: 5\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\nlog_every: 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0, cfg.LogEvery)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("learning_rate: -1\n"), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "learning_rate")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no image", func(c *Config) { c.ImagePath = "" }, "image"},
		{"no labels", func(c *Config) { c.TrainLabelsPath = "" }, "train_labels"},
		{"no output", func(c *Config) { c.OutputPath = "" }, "output"},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }, "iterations"},
		{"zero rate", func(c *Config) { c.LearningRate = 0 }, "learning_rate"},
		{"zero init", func(c *Config) { c.InitRange = 0 }, "init_range"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"zero pool", func(c *Config) { c.Architecture.PoolSize = 0 }, "architecture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{
		ImagePath:      "x.txt",
		Iterations:     7,
		Seed:           3,
		Workers:        2,
		CheckGradients: true,
	})

	assert.Equal(t, "x.txt", cfg.ImagePath)
	assert.Equal(t, 7, cfg.Iterations)
	assert.Equal(t, uint64(3), cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.CheckGradients)

	// Zero values leave the config alone.
	assert.Equal(t, 0.03, cfg.LearningRate)
	assert.Equal(t, "output.pb", cfg.OutputPath)
}

func TestLogEvery(t *testing.T) {
	cfg, err := Parse(strings.NewReader("iterations: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.LogEvery)

	cfg, err = Parse(strings.NewReader("log_every: 0\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.LogEvery)

	// Validate leaves the config untouched.
	cfg.LogEvery = -3
	before := *cfg
	require.NoError(t, cfg.Validate())
	assert.Equal(t, before, *cfg)
}
