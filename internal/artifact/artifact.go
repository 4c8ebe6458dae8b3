// Package artifact stores the result of a classification run: the image
// dimensions, one label per pixel and the training loss trace.
//
// The container is a protobuf google.protobuf.Struct with the keys "rows",
// "cols", "labels" and "loss_fn", marshalled deterministically so equal
// results produce equal bytes.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names in the container.
const (
	KeyRows   = "rows"
	KeyCols   = "cols"
	KeyLabels = "labels"
	KeyLoss   = "loss_fn"
)

// ErrMalformed is returned when a container lacks a field or holds a value of
// the wrong kind.
var ErrMalformed = errors.New("artifact: malformed result")

// Result is a classified image.
type Result struct {
	Rows   int
	Cols   int
	Labels []int
	LossFn []float64
}

// Marshal encodes r.
func Marshal(r *Result) ([]byte, error) {
	if len(r.Labels) != r.Rows*r.Cols {
		return nil, fmt.Errorf("artifact: %d labels for a %dx%d image", len(r.Labels), r.Rows, r.Cols)
	}

	labels := make([]*structpb.Value, len(r.Labels))
	for i, l := range r.Labels {
		labels[i] = structpb.NewNumberValue(float64(l))
	}
	loss := make([]*structpb.Value, len(r.LossFn))
	for i, v := range r.LossFn {
		loss[i] = structpb.NewNumberValue(v)
	}

	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		KeyRows:   structpb.NewNumberValue(float64(r.Rows)),
		KeyCols:   structpb.NewNumberValue(float64(r.Cols)),
		KeyLabels: structpb.NewListValue(&structpb.ListValue{Values: labels}),
		KeyLoss:   structpb.NewListValue(&structpb.ListValue{Values: loss}),
	}}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a result produced by Marshal.
func Unmarshal(data []byte) (*Result, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	rows, err := intField(&s, KeyRows)
	if err != nil {
		return nil, err
	}
	cols, err := intField(&s, KeyCols)
	if err != nil {
		return nil, err
	}
	labelVals, err := listField(&s, KeyLabels)
	if err != nil {
		return nil, err
	}
	lossVals, err := listField(&s, KeyLoss)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Rows:   rows,
		Cols:   cols,
		Labels: make([]int, len(labelVals)),
		LossFn: make([]float64, len(lossVals)),
	}
	for i, v := range labelVals {
		if r.Labels[i], err = toInt(v, KeyLabels); err != nil {
			return nil, err
		}
	}
	for i, v := range lossVals {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a number", ErrMalformed, KeyLoss, i)
		}
		r.LossFn[i] = n.NumberValue
	}
	if len(r.Labels) != rows*cols {
		return nil, fmt.Errorf("%w: %d labels for a %dx%d image", ErrMalformed, len(r.Labels), rows, cols)
	}
	return r, nil
}

// Write encodes r to w.
func Write(w io.Writer, r *Result) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// Read decodes a result from r.
func Read(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	return Unmarshal(data)
}

// Save writes r to path.
func Save(path string, r *Result) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}

// Load reads a result from path.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	return Unmarshal(data)
}

func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	return toInt(v, key)
}

func listField(s *structpb.Struct, key string) ([]*structpb.Value, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	l, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a list", ErrMalformed, key)
	}
	return l.ListValue.GetValues(), nil
}

func toInt(v *structpb.Value, key string) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("%w: %q holds %v, want a non-negative integer", ErrMalformed, key, v.AsInterface())
	}
	return int(n.NumberValue), nil
}
