// Package scale rescales sparse feature columns to unit variance without
// centering, so zero entries stay zero.
package scale

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/chriscorrea/dialect/internal/features"
)

var (
	// ErrEmptyMatrix is returned when fitting on a matrix with no rows.
	ErrEmptyMatrix = errors.New("empty feature matrix")
	// ErrNotFitted is returned when transforming before Fit.
	ErrNotFitted = errors.New("scaler not fitted")
	// ErrDimensionMismatch is returned when the input column count differs
	// from the fitted one.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// smallest standard deviation treated as non-zero
const minScale = 10 * 2.220446049250313e-16

// Scaler divides every column by its population standard deviation computed
// at fit time. Columns with zero variance are divided by one.
type Scaler struct {
	scale []float64
}

// Fit computes per-column standard deviations over all rows of m, counting
// implicit zeros.
func (s *Scaler) Fit(m features.Matrix) error {
	if m.Len() == 0 {
		return ErrEmptyMatrix
	}

	n := float64(m.Len())
	sums := make([]float64, m.Dim)
	nonZero := make([]int, m.Dim)
	for _, row := range m.Rows {
		for k, col := range row.Indices {
			sums[col] += row.Values[k]
			nonZero[col]++
		}
	}

	means := make([]float64, m.Dim)
	for col := range sums {
		means[col] = sums[col] / n
	}

	// squared deviations of stored entries, then of the implicit zeros
	sq := make([]float64, m.Dim)
	for _, row := range m.Rows {
		for k, col := range row.Indices {
			d := row.Values[k] - means[col]
			sq[col] += d * d
		}
	}

	scale := make([]float64, m.Dim)
	constant := 0
	for col := range scale {
		sq[col] += float64(m.Len()-nonZero[col]) * means[col] * means[col]
		std := math.Sqrt(sq[col] / n)
		if std < minScale {
			std = 1
			constant++
		}
		scale[col] = std
	}

	s.scale = scale
	slog.Debug("scaler fitted", "rows", m.Len(), "columns", m.Dim, "constantColumns", constant)
	return nil
}

// Transform returns a new matrix with every stored value divided by its
// column's scale. m is not modified.
func (s *Scaler) Transform(m features.Matrix) (features.Matrix, error) {
	if s.scale == nil {
		return features.Matrix{}, ErrNotFitted
	}
	if m.Dim != len(s.scale) {
		return features.Matrix{}, fmt.Errorf("%w: got %d columns, fitted on %d", ErrDimensionMismatch, m.Dim, len(s.scale))
	}

	out := features.Matrix{Dim: m.Dim, Rows: make([]features.Vector, m.Len())}
	for i, row := range m.Rows {
		scaled := row.Clone()
		for k, col := range scaled.Indices {
			scaled.Values[k] /= s.scale[col]
		}
		out.Rows[i] = scaled
	}
	return out, nil
}

// FitTransform fits on m and returns the scaled copy.
func (s *Scaler) FitTransform(m features.Matrix) (features.Matrix, error) {
	if err := s.Fit(m); err != nil {
		return features.Matrix{}, err
	}
	return s.Transform(m)
}

// Scale returns a copy of the fitted per-column divisors.
func (s *Scaler) Scale() []float64 {
	return append([]float64(nil), s.scale...)
}
