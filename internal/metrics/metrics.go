// Package metrics scores dialect predictions against held-out labels.
//
// Rows labelled with an empty string or the "unknown" sentinel are dropped
// before scoring, since no model ever predicts them. Every label-indexed
// output (confusion matrix, per-class table) uses lexicographic label order.
package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/chriscorrea/dialect/internal/dataset"
)

var (
	// ErrEmptyEvaluationSet is returned when no scorable rows remain.
	ErrEmptyEvaluationSet = errors.New("empty evaluation set")
	// ErrLengthMismatch is returned when documents, labels or predictions
	// differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
)

// Predictor is anything that maps token sequences to labels, such as a
// trained pipeline.
type Predictor interface {
	Predict(docs [][]string) ([]string, error)
}

// ClassMetrics holds the scores of a single label.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the outcome of one evaluation.
type Report struct {
	Accuracy         float64 `json:"accuracy"`
	BalancedAccuracy float64 `json:"balanced_accuracy"`
	F1Weighted       float64 `json:"f1_weighted"`

	// Labels indexes both axes of ConfusionMatrix: rows are true labels,
	// columns are predicted labels.
	Labels          []string       `json:"labels"`
	ConfusionMatrix [][]int        `json:"confusion_matrix"`
	PerClass        []ClassMetrics `json:"per_class"`

	Support int `json:"support"` // rows scored
	Dropped int `json:"dropped"` // rows skipped for a missing or unknown label
}

// Evaluate predicts docs with p and scores the predictions against labels.
func Evaluate(p Predictor, docs [][]string, labels []string) (Report, error) {
	if len(docs) != len(labels) {
		return Report{}, fmt.Errorf("%w: %d documents, %d labels", ErrLengthMismatch, len(docs), len(labels))
	}

	keptDocs := make([][]string, 0, len(docs))
	keptLabels := make([]string, 0, len(labels))
	for i, label := range labels {
		if !dataset.IsLabeled(label) {
			continue
		}
		keptDocs = append(keptDocs, docs[i])
		keptLabels = append(keptLabels, label)
	}
	if len(keptLabels) == 0 {
		return Report{}, ErrEmptyEvaluationSet
	}

	predicted, err := p.Predict(keptDocs)
	if err != nil {
		return Report{}, fmt.Errorf("predict: %w", err)
	}

	report, err := Score(keptLabels, predicted)
	if err != nil {
		return Report{}, err
	}
	report.Dropped = len(labels) - len(keptLabels)

	slog.Debug("evaluation complete", "rows", report.Support, "dropped", report.Dropped, "accuracy", report.Accuracy)
	return report, nil
}

// Score computes a Report from parallel true and predicted labels. No rows
// are dropped.
func Score(yTrue, yPred []string) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, fmt.Errorf("%w: %d true labels, %d predictions", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Report{}, ErrEmptyEvaluationSet
	}

	labels := unionLabels(yTrue, yPred)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	cm := make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		cm[index[yTrue[i]]][index[yPred[i]]]++
	}

	report := Report{
		Accuracy:        Accuracy(yTrue, yPred),
		Labels:          labels,
		ConfusionMatrix: cm,
		PerClass:        make([]ClassMetrics, 0, len(labels)),
		Support:         len(yTrue),
	}

	var recallSum, f1Sum float64
	present := 0
	for i, label := range labels {
		tp := cm[i][i]
		support, predictedCount := 0, 0
		for j := range labels {
			support += cm[i][j]
			predictedCount += cm[j][i]
		}

		precision := ratio(tp, predictedCount)
		recall := ratio(tp, support)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		// labels that are only predicted have no support and do not count
		// towards balanced accuracy or the weighted F1
		if support > 0 {
			present++
			recallSum += recall
			f1Sum += f1 * float64(support)
		}

		report.PerClass = append(report.PerClass, ClassMetrics{
			Label:     label,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		})
	}

	report.BalancedAccuracy = recallSum / float64(present)
	report.F1Weighted = f1Sum / float64(len(yTrue))
	return report, nil
}

// Accuracy returns the fraction of positions where yPred equals yTrue, or 0
// for empty input.
func Accuracy(yTrue, yPred []string) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// unionLabels returns the sorted set of labels appearing in either slice.
func unionLabels(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, l := range a {
		seen[l] = struct{}{}
	}
	for _, l := range b {
		seen[l] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
