// Package balance corrects class imbalance by synthesizing minority-class rows
// in feature space (SMOTE: Synthetic Minority Over-sampling Technique).
//
// Each synthetic row lies on the segment between a real class member and one
// of its nearest same-class neighbors. All randomness comes from a generator
// seeded per call, so identical input and seed always give identical output.
package balance

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/chriscorrea/dialect/internal/features"
)

// DefaultNeighbors is the neighbor count used when none is configured.
const DefaultNeighbors = 5

// SMOTE oversamples every class up to the size of the largest class.
type SMOTE struct {
	k    int
	seed uint64
}

// NewSMOTE creates a balancer using up to k nearest neighbors and the given
// seed.
func NewSMOTE(k int, seed uint64) *SMOTE {
	return &SMOTE{k: k, seed: seed}
}

// FitResample returns m and labels extended with synthetic rows so that every
// class has as many rows as the majority class.
//
// Parameters:
//   - m: feature rows, read-only
//   - labels: class of each row, parallel to m.Rows
//
// Returns:
//   - features.Matrix: original rows in input order followed by synthetic rows
//   - []string: labels parallel to the returned rows
//   - error: ErrInsufficientClassSamples if any class has exactly one row
//
// Classes are processed in lexicographic order.
func (s *SMOTE) FitResample(m features.Matrix, labels []string) (features.Matrix, []string, error) {
	if m.Len() != len(labels) {
		return features.Matrix{}, nil, fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, m.Len(), len(labels))
	}
	if s.k < 1 {
		return features.Matrix{}, nil, fmt.Errorf("%w: got %d", ErrInvalidNeighbors, s.k)
	}

	members := make(map[string][]int)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}

	classes := make([]string, 0, len(members))
	majority := 0
	for class, rows := range members {
		classes = append(classes, class)
		if len(rows) > majority {
			majority = len(rows)
		}
	}
	sort.Strings(classes)

	for _, class := range classes {
		if len(members[class]) < 2 {
			return features.Matrix{}, nil, fmt.Errorf("%w: class %q has %d row", ErrInsufficientClassSamples, class, len(members[class]))
		}
	}

	out := features.Matrix{Dim: m.Dim, Rows: append([]features.Vector(nil), m.Rows...)}
	outLabels := append([]string(nil), labels...)

	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	for _, class := range classes {
		rows := members[class]
		need := majority - len(rows)
		if need == 0 {
			continue
		}

		k := min(s.k, len(rows)-1)
		neighbors := nearestNeighbors(m, rows, k)
		for range need {
			base := rng.IntN(len(rows))
			nb := neighbors[base][rng.IntN(k)]
			gap := rng.Float64()
			out.Rows = append(out.Rows, features.Interpolate(m.Rows[rows[base]], m.Rows[nb], gap))
			outLabels = append(outLabels, class)
		}

		slog.Debug("class oversampled", "class", class, "rows", len(rows), "synthetic", need, "neighbors", k)
	}

	return out, outLabels, nil
}

// nearestNeighbors returns, for each position in rows, the matrix indices of
// its k closest other members by Euclidean distance. Equal distances keep
// row order.
func nearestNeighbors(m features.Matrix, rows []int, k int) [][]int {
	out := make([][]int, len(rows))
	type candidate struct {
		row  int
		dist float64
	}

	for i, r := range rows {
		cands := make([]candidate, 0, len(rows)-1)
		for _, other := range rows {
			if other == r {
				continue
			}
			cands = append(cands, candidate{row: other, dist: features.SquaredDistance(m.Rows[r], m.Rows[other])})
		}
		sort.SliceStable(cands, func(a, b int) bool {
			return cands[a].dist < cands[b].dist
		})

		nearest := make([]int, k)
		for j := range nearest {
			nearest[j] = cands[j].row
		}
		out[i] = nearest
	}
	return out
}
