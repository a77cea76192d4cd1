// Package app contains the core application logic for the dialect CLI tool.
// It wires loading, normalization, training and evaluation together and
// keeps the business logic separated from CLI concerns.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chriscorrea/dialect/internal/counter"
	"github.com/chriscorrea/dialect/internal/dataset"
	"github.com/chriscorrea/dialect/internal/metrics"
	"github.com/chriscorrea/dialect/internal/pipeline"
	"github.com/chriscorrea/dialect/internal/preprocess"
	"github.com/chriscorrea/dialect/internal/spinner"
	"github.com/google/uuid"
)

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// markdown output format (default)
	Markdown OutputFormat = iota
	// plaintext output format
	Text
	// JSON output format
	JSON
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ParseOutputFormat maps "markdown"/"md", "text"/"txt" and "json" to an
// OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "markdown", "md", "":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Markdown, fmt.Errorf("unknown output format %q", s)
	}
}

// Config holds all configuration options for a training run.
type Config struct {
	Sources        dataset.Sources        // corpus directories
	Target         dataset.Target         // class to learn (label or city)
	Search         pipeline.SearchConfig  // grid, folds, workers, seed
	Reshape        bool                   // segment over shaped, visually ordered text
	Stopwords      []string               // empty keeps the built-in list
	CountingMethod counter.CountingMethod // unit for corpus length statistics
	TopTerms       int                    // terms listed per class, 0 disables
	OutputFormat   OutputFormat           // output format (md/txt/json)
	Visual         bool                   // shape and reorder Arabic in text output
	Quiet          bool                   // suppress progress display
}

// Run executes a full training run and renders its report.
//
// Processing Pipeline:
// 1. Load and clean the corpora (dataset.Load)
// 2. Normalize every split into token sequences
// 3. Grid-search and refit the classifier on the train split
// 4. Evaluate on the validation and test splits
// 5. Render the report in the configured format
//
// ctx allows for cancellation of loading and of pending fold fits.
func Run(ctx context.Context, cfg Config) (string, error) {
	report, err := Train(ctx, cfg)
	if err != nil {
		return "", err
	}
	return Render(report, cfg.OutputFormat, cfg.Visual)
}

// Train performs steps 1 through 4 of Run and returns the unrendered report.
func Train(ctx context.Context, cfg Config) (*Report, error) {
	started := time.Now()

	textCounter, err := counter.NewCounter(cfg.CountingMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	// step 1: load corpora
	splits, err := dataset.Load(ctx, cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	if len(splits.Train) == 0 {
		return nil, fmt.Errorf("%w: train split is empty", dataset.ErrNoData)
	}

	report := &Report{
		RunID:  uuid.NewString(),
		Target: string(cfg.Target),
	}

	// step 2: normalize
	normalizer := newNormalizer(cfg)
	prepared := make(map[dataset.Split]preparedSplit, 3)
	for _, split := range []dataset.Split{dataset.Train, dataset.Validation, dataset.Test} {
		docs := splits.Get(split)
		p := prepare(normalizer, docs, cfg.Target)
		prepared[split] = p
		report.Dataset = append(report.Dataset, summarize(split, docs, p, cfg.Target, textCounter))
	}

	// step 3: train
	train := prepared[dataset.Train]
	result, err := search(ctx, cfg, train)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	report.Search = result

	// step 4: evaluate
	report.Validation, err = evaluate(result.Pipeline, dataset.Validation, prepared[dataset.Validation])
	if err != nil {
		return nil, err
	}
	report.Test, err = evaluate(result.Pipeline, dataset.Test, prepared[dataset.Test])
	if err != nil {
		return nil, err
	}

	if cfg.TopTerms > 0 {
		for _, class := range result.Pipeline.Classes() {
			report.TopTerms = append(report.TopTerms, ClassTerms{
				Class: class,
				Terms: result.Pipeline.TopTerms(class, cfg.TopTerms),
			})
		}
	}

	report.Duration = time.Since(started)
	slog.Info("run complete", "run_id", report.RunID, "best", result.Best.String(), "duration", report.Duration)
	return report, nil
}

// newNormalizer builds the normalizer described by cfg.
func newNormalizer(cfg Config) *preprocess.Normalizer {
	opts := []preprocess.Option{preprocess.WithReshape(cfg.Reshape)}
	if len(cfg.Stopwords) > 0 {
		opts = append(opts, preprocess.WithStopwords(cfg.Stopwords))
	}
	return preprocess.NewNormalizer(opts...)
}

// preparedSplit holds the normalized documents of one split alongside the
// raw texts and the selected target labels.
type preparedSplit struct {
	texts  []string
	tokens [][]string
	labels []string
}

func prepare(n *preprocess.Normalizer, docs []dataset.Document, target dataset.Target) preparedSplit {
	p := preparedSplit{
		texts:  make([]string, len(docs)),
		labels: make([]string, len(docs)),
	}
	for i, d := range docs {
		p.texts[i] = d.Text
		p.labels[i] = target.Of(d)
	}
	p.tokens = n.NormalizeAll(p.texts)
	return p
}

// search runs the grid search, drawing a spinner on stderr when it is a
// terminal and the run is not quiet.
func search(ctx context.Context, cfg Config, train preparedSplit) (*pipeline.SearchResult, error) {
	searchCfg := cfg.Search

	if !cfg.Quiet && spinner.Enabled(os.Stderr) {
		sp := spinner.New(ctx, os.Stderr, "Training dialect classifier...")
		sp.Start()
		defer sp.Stop()

		progress := searchCfg.Progress
		searchCfg.Progress = func(done, total int) {
			sp.SetProgress(done, total)
			if progress != nil {
				progress(done, total)
			}
		}
	}

	return pipeline.Train(ctx, train.tokens, train.labels, searchCfg)
}

// evaluate scores p on one held-out split. A split that is empty, or whose
// rows all lack a usable label, yields a nil report.
func evaluate(p metrics.Predictor, split dataset.Split, data preparedSplit) (*metrics.Report, error) {
	if len(data.tokens) == 0 {
		slog.Warn("skipping evaluation of empty split", "split", string(split))
		return nil, nil
	}

	r, err := metrics.Evaluate(p, data.tokens, data.labels)
	if errors.Is(err, metrics.ErrEmptyEvaluationSet) {
		slog.Warn("skipping evaluation, no labelled rows", "split", string(split), "rows", len(data.tokens))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s split: %w", split, err)
	}

	slog.Info("split evaluated", "split", string(split), "accuracy", r.Accuracy, "f1_weighted", r.F1Weighted)
	return &r, nil
}
