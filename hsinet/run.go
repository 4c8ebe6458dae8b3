package hsinet

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/FlavioCFOliveira/hsinet/internal/artifact"
	"github.com/FlavioCFOliveira/hsinet/internal/hsi"
	"github.com/FlavioCFOliveira/hsinet/internal/layer"
	"github.com/FlavioCFOliveira/hsinet/internal/net"
)

// Run executes a full job: it reads the image and the training set, builds
// and initializes the network, optionally checks its gradients, trains,
// classifies every pixel and saves the result to cfg.OutputPath.
// Progress goes to logger; nil selects the standard logger.
func Run(cfg *Config, logger *log.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	start := time.Now()
	image, err := hsi.LoadImage(cfg.ImagePath)
	if err != nil {
		return nil, err
	}
	train, err := hsi.LoadTrainSet(cfg.TrainDataPath, cfg.TrainLabelsPath)
	if err != nil {
		return nil, err
	}
	if image.SpectrumSize != train.SpectrumSize {
		return nil, fmt.Errorf("image spectrum size %d does not match train set spectrum size %d",
			image.SpectrumSize, train.SpectrumSize)
	}
	logger.Printf("loaded %dx%d image and %d training samples (%d bands, %d labels) in %v",
		image.Rows, image.Cols, train.Size, train.SpectrumSize, train.NumLabels, time.Since(start))

	n, err := NewDefault(cfg.Architecture, train.NumLabels)
	if err != nil {
		return nil, err
	}
	if err := n.Init(layer.NewUniform(cfg.InitRange, cfg.Seed), train.SpectrumSize); err != nil {
		return nil, err
	}
	if err := n.Summary(logger.Writer()); err != nil {
		return nil, err
	}

	if cfg.CheckGradients {
		gc := net.DefaultGradCheckConfig()
		gc.Logger = logger
		report, err := n.CheckGradients(train.Data, train.Labels, gc)
		if err != nil {
			return nil, err
		}
		if err := report.Err(); err != nil {
			logger.Printf("gradient check: %v", err)
		} else {
			logger.Printf("gradient check passed for %d entries", len(report.Entries))
		}
	}

	callbacks := []net.Callback{&net.Logger{Interval: cfg.LogEvery, Out: logger}}
	var csvLog *net.CSVLogger
	if cfg.LossCSVPath != "" {
		csvLog = net.NewCSVLogger(cfg.LossCSVPath, false)
		callbacks = append(callbacks, csvLog)
	}
	opts := []net.Option{net.WithWorkers(cfg.Workers), net.WithCallbacks(callbacks...)}

	start = time.Now()
	lossFn, err := n.Train(train.Data, train.Labels, cfg.Iterations, cfg.LearningRate, opts...)
	if err != nil {
		return nil, err
	}
	logger.Printf("training took %.3f seconds", time.Since(start).Seconds())
	if csvLog != nil && csvLog.Err() != nil {
		logger.Printf("loss log incomplete: %v", csvLog.Err())
	}

	start = time.Now()
	labels, err := n.Classify(image.Data, net.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}
	logger.Printf("classification took %.3f seconds", time.Since(start).Seconds())

	result := &artifact.Result{
		Rows:   image.Rows,
		Cols:   image.Cols,
		Labels: labels,
		LossFn: lossFn,
	}
	if err := artifact.Save(cfg.OutputPath, result); err != nil {
		return nil, err
	}
	if info, err := os.Stat(cfg.OutputPath); err == nil {
		logger.Printf("wrote %s (%d bytes)", cfg.OutputPath, info.Size())
	}
	return result, nil
}
