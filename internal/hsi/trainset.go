package hsi

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrLabelCount = errors.New("hsi: label count does not match sample count")
	ErrLabelRange = errors.New("hsi: label out of range")
)

// TrainSet is a labelled set of spectra, one sample per column of Data.
type TrainSet struct {
	Size         int
	SpectrumSize int
	NumLabels    int
	Labels       []int

	// Data is SpectrumSize x Size.
	Data *mat.Dense
}

// ReadTrainSet parses a data stream with header "spectrum_size size" followed
// by the values band by band, and a labels stream with header
// "n_label_values size" followed by one label per sample.
func ReadTrainSet(data, labels io.Reader) (*TrainSet, error) {
	return readTrainSet("train data", data, "train labels", labels)
}

// LoadTrainSet reads a training set from a data file and a labels file.
func LoadTrainSet(dataPath, labelsPath string) (*TrainSet, error) {
	df, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open train data: %w", err)
	}
	defer df.Close()

	lf, err := os.Open(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open train labels: %w", err)
	}
	defer lf.Close()

	return readTrainSet(dataPath, df, labelsPath, lf)
}

func readTrainSet(dataName string, data io.Reader, labelsName string, labels io.Reader) (*TrainSet, error) {
	t := newTokenReader(dataName, data)

	spectrum, err := t.count("spectrum size")
	if err != nil {
		return nil, err
	}
	size, err := t.count("size")
	if err != nil {
		return nil, err
	}
	if spectrum == 0 || size == 0 {
		return nil, fmt.Errorf("%s: empty train set (%d samples, spectrum size %d)", dataName, size, spectrum)
	}

	total, ok := product(spectrum, size)
	if !ok {
		return nil, fmt.Errorf("%s: %d samples with spectrum size %d: %w", dataName, size, spectrum, ErrDimensions)
	}
	values, err := t.floats(total, "sample value")
	if err != nil {
		return nil, err
	}

	ts := &TrainSet{
		Size:         size,
		SpectrumSize: spectrum,
		Data:         mat.NewDense(spectrum, size, values),
	}

	t = newTokenReader(labelsName, labels)
	if ts.NumLabels, err = t.count("label values"); err != nil {
		return nil, err
	}
	n, err := t.count("size")
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("%s: %d labels for %d samples: %w", labelsName, n, size, ErrLabelCount)
	}

	ts.Labels = make([]int, size)
	for i := range ts.Labels {
		l, err := t.integer("label")
		if err != nil {
			return nil, err
		}
		if l < 0 || l >= ts.NumLabels {
			return nil, fmt.Errorf("%s: label %d at sample %d, want [0, %d): %w",
				labelsName, l, i, ts.NumLabels, ErrLabelRange)
		}
		ts.Labels[i] = l
	}
	return ts, nil
}
