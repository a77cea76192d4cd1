// Package pipeline assembles the dialect model: TF-IDF vectorizer, sparse
// scaler, SMOTE balancer and multinomial Naive Bayes, fit as one unit.
//
// Fit trains a single configuration. Train runs a cross-validated grid search
// over n-gram ranges and smoothing values and refits the winner on all rows.
// A fitted Pipeline is immutable; retraining produces a new value.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/chriscorrea/dialect/internal/balance"
	"github.com/chriscorrea/dialect/internal/classify"
	"github.com/chriscorrea/dialect/internal/scale"
	"github.com/chriscorrea/dialect/internal/tfidf"
)

// DefaultSeed seeds the balancer when no seed is configured.
const DefaultSeed = 42

// Params are the hyperparameters searched by Train.
type Params struct {
	NgramRange [2]int  `json:"ngram_range"`
	Alpha      float64 `json:"alpha"`
}

// String renders p as "ngram=(1,2) alpha=0.5".
func (p Params) String() string {
	return fmt.Sprintf("ngram=(%d,%d) alpha=%g", p.NgramRange[0], p.NgramRange[1], p.Alpha)
}

// Options are fixed settings shared by every fit.
type Options struct {
	Seed       uint64 // balancer seed
	KNeighbors int    // balancer neighbor count
}

// DefaultOptions returns seed 42 and five neighbors.
func DefaultOptions() Options {
	return Options{Seed: DefaultSeed, KNeighbors: balance.DefaultNeighbors}
}

// Pipeline is a trained model. The balancer only runs during Fit and keeps no
// state.
type Pipeline struct {
	params     Params
	vectorizer *tfidf.Vectorizer
	scaler     *scale.Scaler
	classifier *classify.MultinomialNB
}

// Fit trains a pipeline on docs and labels with the given hyperparameters.
// Labels are used as given; callers drop unusable rows first.
//
// Parameters:
//   - docs: normalized token sequences
//   - labels: class of each document
//   - params: n-gram range and smoothing
//   - opts: balancer seed and neighbor count
//
// Returns:
//   - *Pipeline: the trained, immutable pipeline
//   - error: ErrEmptyTrainingSet, tfidf.ErrEmptyVocabulary,
//     balance.ErrInsufficientClassSamples or another stage error
func Fit(docs [][]string, labels []string, params Params, opts Options) (*Pipeline, error) {
	if len(docs) != len(labels) {
		return nil, fmt.Errorf("%w: %d documents, %d labels", ErrLengthMismatch, len(docs), len(labels))
	}
	if len(docs) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	vectorizer := tfidf.NewVectorizer(params.NgramRange)
	x, err := vectorizer.FitTransform(docs)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}

	scaler := &scale.Scaler{}
	x, err = scaler.FitTransform(x)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	xb, yb, err := balance.NewSMOTE(opts.KNeighbors, opts.Seed).FitResample(x, labels)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	classifier := classify.NewMultinomialNB(params.Alpha)
	if err := classifier.Fit(xb, yb); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	slog.Debug("pipeline fitted", "params", params.String(), "rows", len(docs), "balancedRows", xb.Len(), "features", vectorizer.Dim())
	return &Pipeline{
		params:     params,
		vectorizer: vectorizer,
		scaler:     scaler,
		classifier: classifier,
	}, nil
}

// Predict returns the predicted label of every document. The vectorizer and
// scaler apply their frozen statistics; unknown tokens are ignored.
func (p *Pipeline) Predict(docs [][]string) ([]string, error) {
	x, err := p.vectorizer.Transform(docs)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	x, err = p.scaler.Transform(x)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	return p.classifier.Predict(x)
}

// Params returns the hyperparameters the pipeline was fit with.
func (p *Pipeline) Params() Params {
	return p.params
}

// Classes returns the learned labels in lexicographic order.
func (p *Pipeline) Classes() []string {
	return p.classifier.Classes()
}

// Vocabulary returns a copy of the frozen term -> column mapping.
func (p *Pipeline) Vocabulary() map[string]int {
	return p.vectorizer.Vocabulary()
}

// ClassLogPrior returns the classifier's per-class log priors.
func (p *Pipeline) ClassLogPrior() []float64 {
	return p.classifier.ClassLogPrior()
}

// FeatureLogProb returns the classifier's per-class feature log likelihoods.
func (p *Pipeline) FeatureLogProb() [][]float64 {
	return p.classifier.FeatureLogProb()
}

// TopTerms returns the n most likely terms for class, or nil if the class
// was not learned.
func (p *Pipeline) TopTerms(class string, n int) []string {
	logProb := p.classifier.FeatureLogProb()
	for c, label := range p.classifier.Classes() {
		if label == class {
			return p.vectorizer.TopTerms(logProb[c], n)
		}
	}
	return nil
}
