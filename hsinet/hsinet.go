// Package hsinet is the public entry point to the hyperspectral pixel
// classifier: layers, the network engine, data readers and the result
// container.
package hsinet

import (
	"github.com/FlavioCFOliveira/hsinet/internal/artifact"
	"github.com/FlavioCFOliveira/hsinet/internal/config"
	"github.com/FlavioCFOliveira/hsinet/internal/hsi"
	"github.com/FlavioCFOliveira/hsinet/internal/layer"
	"github.com/FlavioCFOliveira/hsinet/internal/net"
)

// Re-export common types for easier access
type (
	Network     = net.Network
	Layer       = layer.Layer
	Initializer = layer.Initializer
	Option      = net.Option
	Callback    = net.Callback

	GradCheckConfig = net.GradCheckConfig
	GradCheckReport = net.GradCheckReport

	Image    = hsi.Image
	TrainSet = hsi.TrainSet
	Result   = artifact.Result

	Config       = config.Config
	Architecture = config.Architecture
)

// New creates a network from an ordered list of layers.
func New(layers ...Layer) (*Network, error) {
	return net.New(layers...)
}

// NewDefault builds the conv -> pool -> dense -> softmax network described
// by arch for nLabels classes.
func NewDefault(arch Architecture, nLabels int) (*Network, error) {
	return net.New(
		Conv1D(arch.ConvKernels, arch.KernelSize),
		MaxPool1D(arch.PoolSize),
		Dense(arch.HiddenNodes),
		SoftmaxOutput(nLabels),
	)
}

// Layers
func Conv1D(nKernels, kernelSize int) Layer {
	return layer.NewConv1D(nKernels, kernelSize)
}

func MaxPool1D(poolSize int) Layer {
	return layer.NewMaxPool1D(poolSize)
}

func Dense(nNodes int) Layer {
	return layer.NewDense(nNodes)
}

func SoftmaxOutput(nNodes int) Layer {
	return layer.NewSoftmaxOutput(nNodes)
}

// Initializers
func Uniform(max float64, seed uint64) Initializer {
	return layer.NewUniform(max, seed)
}

func Constant(v float64) Initializer {
	return layer.Constant{Value: v}
}

// Options
func WithWorkers(n int) Option {
	return net.WithWorkers(n)
}

func WithCallbacks(cbs ...Callback) Option {
	return net.WithCallbacks(cbs...)
}

// Callbacks
func Logger(interval int) *net.Logger {
	return &net.Logger{Interval: interval}
}

func CSVLogger(filename string) *net.CSVLogger {
	return net.NewCSVLogger(filename, false)
}

func DefaultGradCheckConfig() GradCheckConfig {
	return net.DefaultGradCheckConfig()
}

// Data
func LoadImage(path string) (*Image, error) {
	return hsi.LoadImage(path)
}

func LoadTrainSet(dataPath, labelsPath string) (*TrainSet, error) {
	return hsi.LoadTrainSet(dataPath, labelsPath)
}

// Results
func SaveResult(path string, r *Result) error {
	return artifact.Save(path, r)
}

func LoadResult(path string) (*Result, error) {
	return artifact.Load(path)
}

// Configuration
func DefaultConfig() *Config {
	return config.Default()
}

func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
