package artifact

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// StandardScaler applies (x - mean) / scale column-wise, matching a fitted
// scikit-learn StandardScaler.
type StandardScaler struct {
	mean  *mat.VecDense
	scale *mat.VecDense
}

// NewStandardScaler builds a scaler from fitted means and scales. A zero
// scale is replaced by 1 so constant columns pass through centred.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, errors.New("standard scaler: no features")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("standard scaler: %d means but %d scales", len(mean), len(scale))
	}
	s := make([]float64, len(scale))
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s[i] = v
	}
	return &StandardScaler{
		mean:  mat.NewVecDense(len(mean), slices.Clone(mean)),
		scale: mat.NewVecDense(len(s), s),
	}, nil
}

// NumFeatures returns the input width the scaler was fitted on.
func (s *StandardScaler) NumFeatures() int { return s.mean.Len() }

// Transform scales every row. Rows of the wrong width are rejected.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		x, err := rowVec(row, s.NumFeatures(), i)
		if err != nil {
			return nil, err
		}
		x.SubVec(x, s.mean)
		x.DivElemVec(x, s.scale)
		out[i] = x.RawVector().Data
	}
	return out, nil
}

// MinMaxScaler applies x * scale + min, matching a fitted scikit-learn
// MinMaxScaler (its min_ and scale_ attributes).
type MinMaxScaler struct {
	offset *mat.VecDense
	scale  *mat.VecDense
}

func NewMinMaxScaler(offset, scale []float64) (*MinMaxScaler, error) {
	if len(offset) == 0 {
		return nil, errors.New("min-max scaler: no features")
	}
	if len(offset) != len(scale) {
		return nil, fmt.Errorf("min-max scaler: %d offsets but %d scales", len(offset), len(scale))
	}
	return &MinMaxScaler{
		offset: mat.NewVecDense(len(offset), slices.Clone(offset)),
		scale:  mat.NewVecDense(len(scale), slices.Clone(scale)),
	}, nil
}

func (s *MinMaxScaler) NumFeatures() int { return s.offset.Len() }

func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		x, err := rowVec(row, s.NumFeatures(), i)
		if err != nil {
			return nil, err
		}
		x.MulElemVec(x, s.scale)
		x.AddVec(x, s.offset)
		out[i] = x.RawVector().Data
	}
	return out, nil
}

// rowVec copies row into a fresh vector after checking its width.
func rowVec(row []float64, width, index int) (*mat.VecDense, error) {
	if len(row) != width {
		return nil, fmt.Errorf("row %d has %d features, expected %d", index, len(row), width)
	}
	return mat.NewVecDense(width, slices.Clone(row)), nil
}
