// Package features holds the sparse vector and matrix types passed between the
// numeric stages of the dialect pipeline (vectorizer, scaler, balancer,
// classifier).
//
// A Vector stores only its non-zero entries: Indices are strictly increasing
// column positions and Values are the weights at those positions. Every stage
// treats its input as read-only and returns fresh vectors.
package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Vector is a sparse row of a feature matrix.
type Vector struct {
	Indices []int     // column positions, strictly increasing
	Values  []float64 // weights, parallel to Indices
}

// FromMap builds a Vector from a column -> value map, dropping zero entries.
func FromMap(m map[int]float64) Vector {
	indices := make([]int, 0, len(m))
	for idx, v := range m {
		if v != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = m[idx]
	}
	return Vector{Indices: indices, Values: values}
}

// Len returns the number of stored (non-zero) entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// Clone returns a deep copy of v.
func (v Vector) Clone() Vector {
	return Vector{
		Indices: append([]int(nil), v.Indices...),
		Values:  append([]float64(nil), v.Values...),
	}
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	if len(v.Values) == 0 {
		return 0
	}
	return floats.Norm(v.Values, 2)
}

// Normalize returns v scaled to unit Euclidean length. A zero vector is
// returned unchanged.
func (v Vector) Normalize() Vector {
	n := v.Norm()
	out := v.Clone()
	if n == 0 {
		return out
	}
	floats.Scale(1/n, out.Values)
	return out
}

// SquaredDistance returns the squared Euclidean distance between a and b.
func SquaredDistance(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			sum += a.Values[i] * a.Values[i]
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			sum += b.Values[j] * b.Values[j]
			j++
		default:
			d := a.Values[i] - b.Values[j]
			sum += d * d
			i++
			j++
		}
	}
	return sum
}

// Interpolate returns a + gap*(b-a), the point at fraction gap along the
// segment from a to b.
func Interpolate(a, b Vector, gap float64) Vector {
	m := make(map[int]float64, len(a.Indices)+len(b.Indices))
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			m[a.Indices[i]] = a.Values[i] - gap*a.Values[i]
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			m[b.Indices[j]] = gap * b.Values[j]
			j++
		default:
			m[a.Indices[i]] = a.Values[i] + gap*(b.Values[j]-a.Values[i])
			i++
			j++
		}
	}
	return FromMap(m)
}

// Matrix is an ordered collection of sparse rows sharing one column space.
type Matrix struct {
	Dim  int      // number of columns
	Rows []Vector // one vector per document
}

// Len returns the number of rows.
func (m Matrix) Len() int {
	return len(m.Rows)
}

// Subset returns a matrix made of the rows at the given positions, in order.
// Rows are shared with m, not copied.
func (m Matrix) Subset(rows []int) Matrix {
	out := Matrix{Dim: m.Dim, Rows: make([]Vector, len(rows))}
	for i, r := range rows {
		out.Rows[i] = m.Rows[r]
	}
	return out
}

// Dense expands row i into a slice of length m.Dim.
func (m Matrix) Dense(i int) []float64 {
	out := make([]float64, m.Dim)
	row := m.Rows[i]
	for k, idx := range row.Indices {
		out[idx] = row.Values[k]
	}
	return out
}

// HasNegative reports whether any stored value is negative or NaN.
func (m Matrix) HasNegative() bool {
	for _, row := range m.Rows {
		for _, v := range row.Values {
			if v < 0 || math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}
