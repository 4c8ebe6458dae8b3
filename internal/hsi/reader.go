package hsi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	// ErrTruncated is returned when a file ends before all declared values are read.
	ErrTruncated = errors.New("hsi: unexpected end of input")

	// ErrDimensions is returned when a header declares more values than
	// can be addressed.
	ErrDimensions = errors.New("hsi: declared dimensions overflow")
)

// maxPrealloc bounds the buffer reserved up front; larger inputs grow it as
// values are actually read, so a lying header cannot force a huge allocation.
const maxPrealloc = 1 << 16

// product returns a*b for non-negative a and b, or false if it overflows.
func product(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// tokenReader reads whitespace separated numbers and remembers how many it
// has consumed, so parse errors can point at the offending token.
type tokenReader struct {
	name string
	sc   *bufio.Scanner
	pos  int
}

func newTokenReader(name string, r io.Reader) *tokenReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &tokenReader{name: name, sc: sc}
}

func (t *tokenReader) next(what string) (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", fmt.Errorf("%s: reading %s at token %d: %w", t.name, what, t.pos, err)
		}
		return "", fmt.Errorf("%s: reading %s at token %d: %w", t.name, what, t.pos, ErrTruncated)
	}
	t.pos++
	return t.sc.Text(), nil
}

func (t *tokenReader) integer(what string) (int, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%s: token %d (%s): %w", t.name, t.pos, what, err)
	}
	return v, nil
}

// count reads a non-negative integer.
func (t *tokenReader) count(what string) (int, error) {
	v, err := t.integer(what)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: token %d (%s): negative value %d", t.name, t.pos, what, v)
	}
	return v, nil
}

func (t *tokenReader) float(what string) (float64, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: token %d (%s): %w", t.name, t.pos, what, err)
	}
	return v, nil
}

// floats reads n values.
func (t *tokenReader) floats(n int, what string) ([]float64, error) {
	data := make([]float64, 0, min(n, maxPrealloc))
	for len(data) < n {
		v, err := t.float(what)
		if err != nil {
			return nil, err
		}
		data = append(data, v)
	}
	return data, nil
}
