package features

import (
	"math"
	"testing"
)

func TestFromMap(t *testing.T) {
	v := FromMap(map[int]float64{5: 2, 1: 1, 3: 0})

	wantIdx := []int{1, 5}
	wantVal := []float64{1, 2}
	if len(v.Indices) != len(wantIdx) {
		t.Fatalf("FromMap() indices = %v, want %v", v.Indices, wantIdx)
	}
	for i := range wantIdx {
		if v.Indices[i] != wantIdx[i] || v.Values[i] != wantVal[i] {
			t.Errorf("FromMap() entry %d = (%d, %f), want (%d, %f)", i, v.Indices[i], v.Values[i], wantIdx[i], wantVal[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vector
		wantNorm float64
	}{
		{"zero vector", Vector{}, 0},
		{"single entry", Vector{Indices: []int{2}, Values: []float64{4}}, 1},
		{"pythagorean", Vector{Indices: []int{0, 1}, Values: []float64{3, 4}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.vector.Normalize().Norm()
			if math.Abs(got-tt.wantNorm) > 1e-12 {
				t.Errorf("Normalize().Norm() = %f, want %f", got, tt.wantNorm)
			}
		})
	}

	original := Vector{Indices: []int{0, 1}, Values: []float64{3, 4}}
	_ = original.Normalize()
	if original.Values[0] != 3 {
		t.Error("Normalize() mutated its receiver")
	}
}

func TestSquaredDistance(t *testing.T) {
	a := Vector{Indices: []int{0, 2}, Values: []float64{1, 2}}
	b := Vector{Indices: []int{1, 2}, Values: []float64{3, 1}}

	// (1-0)^2 + (0-3)^2 + (2-1)^2
	if got := SquaredDistance(a, b); got != 11 {
		t.Errorf("SquaredDistance() = %f, want 11", got)
	}
	if got := SquaredDistance(a, a); got != 0 {
		t.Errorf("SquaredDistance(a, a) = %f, want 0", got)
	}
}

func TestInterpolate(t *testing.T) {
	a := Vector{Indices: []int{0}, Values: []float64{2}}
	b := Vector{Indices: []int{1}, Values: []float64{4}}

	got := Interpolate(a, b, 0.25)
	dense := Matrix{Dim: 2, Rows: []Vector{got}}.Dense(0)
	if dense[0] != 1.5 || dense[1] != 1 {
		t.Errorf("Interpolate() = %v, want [1.5 1]", dense)
	}
}

func TestSubset(t *testing.T) {
	m := Matrix{Dim: 1, Rows: []Vector{
		{Indices: []int{0}, Values: []float64{1}},
		{Indices: []int{0}, Values: []float64{2}},
		{Indices: []int{0}, Values: []float64{3}},
	}}

	sub := m.Subset([]int{2, 0})
	if sub.Len() != 2 || sub.Rows[0].Values[0] != 3 || sub.Rows[1].Values[0] != 1 {
		t.Errorf("Subset() rows = %v", sub.Rows)
	}
}
