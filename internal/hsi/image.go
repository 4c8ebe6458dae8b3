// Package hsi reads hyperspectral images and labelled training sets from the
// whitespace separated text formats used by the classifier.
package hsi

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Image is a hyperspectral image with one column per pixel.
type Image struct {
	Rows         int
	Cols         int
	SpectrumSize int

	// Data is SpectrumSize x (Rows*Cols).
	Data *mat.Dense
}

// Pixel returns the column of Data holding the pixel at (row, col).
// Pixels are stored column-major.
func (im *Image) Pixel(row, col int) int {
	return row + col*im.Rows
}

// NumPixels returns Rows*Cols.
func (im *Image) NumPixels() int {
	return im.Rows * im.Cols
}

// ReadImage parses an image. The header is "spectrum_size rows cols",
// followed by rows*cols spectra, pixel after pixel in column-major order.
func ReadImage(r io.Reader) (*Image, error) {
	return readImage("image", r)
}

// LoadImage reads the image stored at path.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return readImage(path, f)
}

func readImage(name string, r io.Reader) (*Image, error) {
	t := newTokenReader(name, r)

	spectrum, err := t.count("spectrum size")
	if err != nil {
		return nil, err
	}
	rows, err := t.count("rows")
	if err != nil {
		return nil, err
	}
	cols, err := t.count("cols")
	if err != nil {
		return nil, err
	}
	if spectrum == 0 || rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%s: empty image %dx%d with spectrum size %d", name, rows, cols, spectrum)
	}

	pixels, ok := product(rows, cols)
	total, ok2 := product(pixels, spectrum)
	if !ok || !ok2 {
		return nil, fmt.Errorf("%s: %dx%d image with spectrum size %d: %w", name, rows, cols, spectrum, ErrDimensions)
	}

	// Spectra arrive pixel after pixel, so the values form a
	// pixels x spectrum matrix.
	data, err := t.floats(total, "pixel value")
	if err != nil {
		return nil, err
	}
	byPixel := mat.NewDense(pixels, spectrum, data)

	return &Image{
		Rows:         rows,
		Cols:         cols,
		SpectrumSize: spectrum,
		Data:         mat.DenseCopyOf(byPixel.T()),
	}, nil
}
