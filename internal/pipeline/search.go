package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/chriscorrea/dialect/internal/dataset"
	"github.com/chriscorrea/dialect/internal/metrics"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// DefaultFolds is the number of cross-validation folds.
const DefaultFolds = 5

// SearchConfig describes a cross-validated grid search. The grid is
// NgramRanges x Alphas with n-gram ranges as the outer loop; that order
// decides ties.
type SearchConfig struct {
	NgramRanges [][2]int
	Alphas      []float64
	Folds       int
	Workers     int // concurrent fits, <= 0 means runtime.NumCPU()
	Options     Options

	// Progress, if set, is called from worker goroutines after each fold
	// fit with the number of finished and total fits.
	Progress func(done, total int)
}

// DefaultSearchConfig returns the grid {(1,1), (1,2)} x {0.5, 0.8, 1.0} with
// five folds.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		NgramRanges: [][2]int{{1, 1}, {1, 2}},
		Alphas:      []float64{0.5, 0.8, 1.0},
		Folds:       DefaultFolds,
		Workers:     runtime.NumCPU(),
		Options:     DefaultOptions(),
	}
}

// Grid enumerates the candidate parameters in search order.
func (c SearchConfig) Grid() []Params {
	grid := make([]Params, 0, len(c.NgramRanges)*len(c.Alphas))
	for _, ngram := range c.NgramRanges {
		for _, alpha := range c.Alphas {
			grid = append(grid, Params{NgramRange: ngram, Alpha: alpha})
		}
	}
	return grid
}

// CandidateScore is the cross-validation outcome of one grid point.
type CandidateScore struct {
	Params     Params    `json:"params"`
	FoldScores []float64 `json:"fold_scores"`
	MeanScore  float64   `json:"mean_score"`
	StdScore   float64   `json:"std_score"`
}

// SearchResult is the outcome of Train.
type SearchResult struct {
	Best       Params           `json:"best"`
	BestScore  float64          `json:"best_score"`
	BestIndex  int              `json:"best_index"`
	Candidates []CandidateScore `json:"candidates"`

	TrainingRows int `json:"training_rows"` // rows after label cleaning
	DroppedRows  int `json:"dropped_rows"`  // rows with a missing or unknown label

	Pipeline *Pipeline `json:"-"`
}

// Train drops unlabelled rows, scores every grid candidate with stratified
// k-fold cross-validation on accuracy, and refits the best candidate on all
// remaining rows.
//
// Parameters:
//   - ctx: cancels pending fold fits
//   - docs: normalized token sequences
//   - labels: class of each document; "" and "unknown" rows are dropped
//   - cfg: grid, folds, workers and fixed options
//
// Returns:
//   - *SearchResult: per-candidate scores and the refit pipeline
//   - error: ErrEmptyTrainingSet, ErrTooFewRows, or the first fold error with
//     its candidate and fold
//
// Fold fits run concurrently on a bounded worker pool. Each job writes only
// its own score slot, and every fit seeds its own balancer, so results do
// not depend on scheduling. Ties keep the earliest grid candidate.
func Train(ctx context.Context, docs [][]string, labels []string, cfg SearchConfig) (*SearchResult, error) {
	if len(docs) != len(labels) {
		return nil, fmt.Errorf("%w: %d documents, %d labels", ErrLengthMismatch, len(docs), len(labels))
	}

	grid := cfg.Grid()
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty parameter grid", ErrInvalidSearch)
	}
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrInvalidSearch, cfg.Folds)
	}

	cleanDocs, cleanLabels := CleanLabels(docs, labels)
	if len(cleanDocs) == 0 {
		return nil, fmt.Errorf("%w: all %d rows lack a usable label", ErrEmptyTrainingSet, len(docs))
	}
	if len(cleanDocs) < cfg.Folds {
		return nil, fmt.Errorf("%w: %d rows, %d folds", ErrTooFewRows, len(cleanDocs), cfg.Folds)
	}

	folds := StratifiedFolds(cleanLabels, cfg.Folds)
	trainIdx := make([][]int, len(folds))
	for f := range folds {
		trainIdx[f] = complement(folds[f], len(cleanLabels))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slog.Info("starting grid search",
		"rows", len(cleanDocs),
		"dropped", len(docs)-len(cleanDocs),
		"candidates", len(grid),
		"folds", cfg.Folds,
		"workers", workers)

	scores := make([][]float64, len(grid))
	for c := range scores {
		scores[c] = make([]float64, cfg.Folds)
	}

	total := len(grid) * cfg.Folds
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for c, params := range grid {
		for f := range folds {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				score, err := scoreFold(cleanDocs, cleanLabels, trainIdx[f], folds[f], params, cfg.Options)
				if err != nil {
					return fmt.Errorf("candidate %d (%s) fold %d: %w", c, params, f, err)
				}
				scores[c][f] = score
				if cfg.Progress != nil {
					cfg.Progress(int(finished.Add(1)), total)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SearchResult{
		BestIndex:    -1,
		Candidates:   make([]CandidateScore, len(grid)),
		TrainingRows: len(cleanDocs),
		DroppedRows:  len(docs) - len(cleanDocs),
	}
	for c, params := range grid {
		mean, std := stat.MeanStdDev(scores[c], nil)
		result.Candidates[c] = CandidateScore{
			Params:     params,
			FoldScores: scores[c],
			MeanScore:  mean,
			StdScore:   std,
		}
		slog.Debug("candidate scored", "params", params.String(), "mean", mean, "std", std)

		if result.BestIndex < 0 || mean > result.BestScore {
			result.BestIndex = c
			result.BestScore = mean
			result.Best = params
		}
	}

	slog.Info("grid search complete", "best", result.Best.String(), "score", result.BestScore)

	p, err := Fit(cleanDocs, cleanLabels, result.Best, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("refit %s: %w", result.Best, err)
	}
	result.Pipeline = p

	return result, nil
}

// scoreFold fits params on the training rows and returns accuracy on the
// held-out rows.
func scoreFold(docs [][]string, labels []string, train, test []int, params Params, opts Options) (float64, error) {
	p, err := Fit(pick(docs, train), pick(labels, train), params, opts)
	if err != nil {
		return 0, err
	}

	predicted, err := p.Predict(pick(docs, test))
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(pick(labels, test), predicted), nil
}

// CleanLabels returns the documents and labels of rows whose label is
// usable, preserving order.
func CleanLabels(docs [][]string, labels []string) ([][]string, []string) {
	outDocs := make([][]string, 0, len(docs))
	outLabels := make([]string, 0, len(labels))
	for i, label := range labels {
		if !dataset.IsLabeled(label) {
			continue
		}
		outDocs = append(outDocs, docs[i])
		outLabels = append(outLabels, label)
	}
	return outDocs, outLabels
}

// StratifiedFolds splits row indices into k held-out folds without shuffling.
// Classes are visited in lexicographic order and their rows dealt round-robin
// across folds, continuing the rotation between classes so fold sizes differ
// by at most one. Indices within each fold are sorted.
func StratifiedFolds(labels []string, k int) [][]int {
	byClass := make(map[string][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]string, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	folds := make([][]int, k)
	next := 0
	for _, class := range classes {
		for _, row := range byClass[class] {
			folds[next] = append(folds[next], row)
			next = (next + 1) % k
		}
	}
	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds
}

// complement returns the sorted indices in [0, n) not present in sorted held.
func complement(held []int, n int) []int {
	out := make([]int, 0, n-len(held))
	j := 0
	for i := range n {
		if j < len(held) && held[j] == i {
			j++
			continue
		}
		out = append(out, i)
	}
	return out
}

func pick[T any](items []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
