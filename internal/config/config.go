// Package config holds the runtime knobs for a classification run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training and classification run.
// A LogEvery below 1 disables per-iteration log lines.
type Config struct {
	ImagePath       string `yaml:"image"`
	TrainDataPath   string `yaml:"train_data"`
	TrainLabelsPath string `yaml:"train_labels"`
	OutputPath      string `yaml:"output"`
	LossCSVPath     string `yaml:"loss_csv"`

	Iterations     int     `yaml:"iterations"`
	LearningRate   float64 `yaml:"learning_rate"`
	InitRange      float64 `yaml:"init_range"`
	Seed           uint64  `yaml:"seed"`
	Workers        int     `yaml:"workers"`
	LogEvery       int     `yaml:"log_every"`
	CheckGradients bool    `yaml:"check_gradients"`

	Architecture Architecture `yaml:"architecture"`
}

// Architecture is the conv -> pool -> dense -> softmax layout.
type Architecture struct {
	ConvKernels int `yaml:"conv_kernels"`
	KernelSize  int `yaml:"kernel_size"`
	PoolSize    int `yaml:"pool_size"`
	HiddenNodes int `yaml:"hidden_nodes"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	ImagePath       string
	TrainDataPath   string
	TrainLabelsPath string
	OutputPath      string
	LossCSVPath     string
	Iterations      int
	LearningRate    float64
	Seed            uint64
	Workers         int
	LogEvery        int
	CheckGradients  bool
}

// Default returns the configuration of the reference Salinas run.
func Default() *Config {
	return &Config{
		ImagePath:       "salinas.txt",
		TrainDataPath:   "salinas_train2.txt",
		TrainLabelsPath: "salinas_train2_labels.txt",
		OutputPath:      "output.pb",

		Iterations:   100,
		LearningRate: 0.03,
		InitRange:    0.05,
		LogEvery:     10,

		Architecture: Architecture{
			ConvKernels: 10,
			KernelSize:  20,
			PoolSize:    5,
			HiddenNodes: 100,
		},
	}
}

// Load reads and validates a Config from YAML. Keys missing from the file
// keep their defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.ImagePath != "" {
		c.ImagePath = o.ImagePath
	}
	if o.TrainDataPath != "" {
		c.TrainDataPath = o.TrainDataPath
	}
	if o.TrainLabelsPath != "" {
		c.TrainLabelsPath = o.TrainLabelsPath
	}
	if o.OutputPath != "" {
		c.OutputPath = o.OutputPath
	}
	if o.LossCSVPath != "" {
		c.LossCSVPath = o.LossCSVPath
	}
	if o.Iterations > 0 {
		c.Iterations = o.Iterations
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.CheckGradients {
		c.CheckGradients = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.ImagePath == "" {
		return errors.New("image path must be set")
	}
	if c.TrainDataPath == "" || c.TrainLabelsPath == "" {
		return errors.New("both train_data and train_labels must be set")
	}
	if c.OutputPath == "" {
		return errors.New("output path must be set")
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0 (got %d)", c.Iterations)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.InitRange <= 0 {
		return fmt.Errorf("init_range must be > 0 (got %g)", c.InitRange)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}

	a := c.Architecture
	if a.ConvKernels <= 0 || a.KernelSize <= 0 || a.PoolSize <= 0 || a.HiddenNodes <= 0 {
		return fmt.Errorf("architecture sizes must be > 0 (got %+v)", a)
	}
	return nil
}
