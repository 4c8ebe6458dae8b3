package main

import (
	"flag"
	"log"
	"time"

	"github.com/FlavioCFOliveira/hsinet/hsinet"
	"github.com/FlavioCFOliveira/hsinet/internal/config"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (defaults reproduce the Salinas run)")
	image := flag.String("image", "", "Override spectral image path")
	trainData := flag.String("train-data", "", "Override training data path")
	trainLabels := flag.String("train-labels", "", "Override training labels path")
	output := flag.String("output", "", "Override result path")
	lossCSV := flag.String("loss-csv", "", "Write the loss trace to this CSV file")
	iterations := flag.Int("iterations", 0, "Number of training iterations")
	rate := flag.Float64("rate", 0, "Learning rate")
	seed := flag.Uint64("seed", 0, "Weight initialization seed")
	workers := flag.Int("workers", 0, "Number of worker goroutines (0 = all cores)")
	logEvery := flag.Int("log-every", 0, "Log every N iterations")
	checkGrads := flag.Bool("check-gradients", false, "Compare analytic and numeric gradients before training")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		ImagePath:       *image,
		TrainDataPath:   *trainData,
		TrainLabelsPath: *trainLabels,
		OutputPath:      *output,
		LossCSVPath:     *lossCSV,
		Iterations:      *iterations,
		LearningRate:    *rate,
		Seed:            *seed,
		Workers:         *workers,
		LogEvery:        *logEvery,
		CheckGradients:  *checkGrads,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	start := time.Now()
	result, err := hsinet.Run(cfg, nil)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	log.Printf("classified %d pixels, final loss %.6f, total %v",
		len(result.Labels), finalLoss(result.LossFn), time.Since(start))
}

func finalLoss(trace []float64) float64 {
	if len(trace) == 0 {
		return 0
	}
	return trace[len(trace)-1]
}
