// Package classify provides a multinomial Naive Bayes classifier over sparse
// feature rows.
//
// The classifier estimates a prior P(class) from label frequencies and a
// per-class likelihood P(feature|class) from summed feature weights with
// additive (Lidstone) smoothing:
//
//	log P(f|c) = ln((N_cf + alpha) / (N_c + alpha*|F|))
//
// where N_cf is the total weight of feature f in class c, N_c the total weight
// of all features in class c, and |F| the number of features. A row is
// assigned the class maximizing log P(c) + sum_f x_f * log P(f|c).
package classify

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/chriscorrea/dialect/internal/features"
	"gonum.org/v1/gonum/floats"
)

// MultinomialNB is a multinomial Naive Bayes classifier. After Fit its
// parameters are read-only.
type MultinomialNB struct {
	alpha float64

	classes        []string    // sorted lexicographically
	classLogPrior  []float64   // per class
	featureLogProb [][]float64 // per class, per feature
	dim            int
}

// NewMultinomialNB creates a classifier with smoothing parameter alpha.
func NewMultinomialNB(alpha float64) *MultinomialNB {
	return &MultinomialNB{alpha: alpha}
}

// Alpha returns the smoothing parameter.
func (nb *MultinomialNB) Alpha() float64 {
	return nb.alpha
}

// Fit estimates class priors and feature likelihoods from m and labels.
//
// Parameters:
//   - m: non-negative feature rows
//   - labels: class of each row, parallel to m.Rows
//
// Returns:
//   - error: ErrEmptyTrainingSet, ErrNegativeFeature, ErrInvalidAlpha or
//     ErrLengthMismatch
func (nb *MultinomialNB) Fit(m features.Matrix, labels []string) error {
	if !(nb.alpha > 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, nb.alpha)
	}
	if m.Len() != len(labels) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, m.Len(), len(labels))
	}
	if m.Len() == 0 {
		return ErrEmptyTrainingSet
	}
	if m.HasNegative() {
		return ErrNegativeFeature
	}

	// index classes in lexicographic order
	seen := make(map[string]struct{})
	for _, label := range labels {
		seen[label] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	classCount := make([]float64, len(classes))
	featureCount := make([][]float64, len(classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, m.Dim)
	}
	for i, row := range m.Rows {
		c := classIndex[labels[i]]
		classCount[c]++
		for k, col := range row.Indices {
			featureCount[c][col] += row.Values[k]
		}
	}

	n := float64(m.Len())
	classLogPrior := make([]float64, len(classes))
	featureLogProb := make([][]float64, len(classes))
	for c := range classes {
		classLogPrior[c] = math.Log(classCount[c] / n)

		denom := math.Log(floats.Sum(featureCount[c]) + nb.alpha*float64(m.Dim))
		logProb := make([]float64, m.Dim)
		for f, count := range featureCount[c] {
			logProb[f] = math.Log(count+nb.alpha) - denom
		}
		featureLogProb[c] = logProb
	}

	nb.classes = classes
	nb.classLogPrior = classLogPrior
	nb.featureLogProb = featureLogProb
	nb.dim = m.Dim

	slog.Debug("naive bayes fitted", "rows", m.Len(), "classes", len(classes), "features", m.Dim, "alpha", nb.alpha)
	return nil
}

// Predict returns the most likely class of every row of m. Exact score ties
// resolve to the lexicographically smallest class.
func (nb *MultinomialNB) Predict(m features.Matrix) ([]string, error) {
	if nb.classes == nil {
		return nil, ErrNotFitted
	}
	if m.Dim != nb.dim {
		return nil, fmt.Errorf("%w: got %d columns, fitted on %d", ErrDimensionMismatch, m.Dim, nb.dim)
	}

	out := make([]string, m.Len())
	scores := make([]float64, len(nb.classes))
	for i, row := range m.Rows {
		nb.jointLogLikelihood(row, scores)
		// MaxIdx returns the first maximum, classes are sorted
		out[i] = nb.classes[floats.MaxIdx(scores)]
	}
	return out, nil
}

// jointLogLikelihood writes log P(c) + sum_f x_f * log P(f|c) for every class
// into dst.
func (nb *MultinomialNB) jointLogLikelihood(row features.Vector, dst []float64) {
	for c := range nb.classes {
		score := nb.classLogPrior[c]
		logProb := nb.featureLogProb[c]
		for k, col := range row.Indices {
			score += row.Values[k] * logProb[col]
		}
		dst[c] = score
	}
}

// Classes returns a copy of the fitted class labels in lexicographic order.
func (nb *MultinomialNB) Classes() []string {
	return append([]string(nil), nb.classes...)
}

// ClassLogPrior returns a copy of the per-class log priors, parallel to
// Classes.
func (nb *MultinomialNB) ClassLogPrior() []float64 {
	return append([]float64(nil), nb.classLogPrior...)
}

// FeatureLogProb returns a copy of the per-class feature log likelihoods.
func (nb *MultinomialNB) FeatureLogProb() [][]float64 {
	out := make([][]float64, len(nb.featureLogProb))
	for c, row := range nb.featureLogProb {
		out[c] = append([]float64(nil), row...)
	}
	return out
}
