// Package tfidf provides TF-IDF (Term Frequency-Inverse Document Frequency) feature extraction.
//
// This package learns a vocabulary of word n-grams from a training corpus and
// converts token sequences into L2-normalized sparse weight vectors.
//
// The TF-IDF weighting combines:
//   - Term Frequency (TF): raw count of a term in a document
//   - Inverse Document Frequency (IDF): smoothed rarity of the term across the
//     fit corpus, ln((1+N)/(1+df)) + 1
//
// Usage Example:
//
//	v := tfidf.NewVectorizer([2]int{1, 2})
//	m, err := v.FitTransform(docs)
//
// The vocabulary is frozen once Fit returns; Transform ignores unknown terms.
package tfidf

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/chriscorrea/dialect/internal/features"
)

var (
	// ErrEmptyVocabulary is returned when the fit corpus yields no terms.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrNotFitted is returned when transforming before Fit.
	ErrNotFitted = errors.New("vectorizer not fitted")
	// ErrInvalidNgramRange is returned for ranges other than 1 <= min <= max.
	ErrInvalidNgramRange = errors.New("invalid n-gram range")
)

// Vectorizer holds the n-gram configuration and, after Fit, the frozen
// vocabulary and IDF weights.
type Vectorizer struct {
	ngramRange [2]int
	vocabulary map[string]int // term -> column
	terms      []string       // column -> term
	idf        []float64      // column -> smoothed IDF
	docCount   int            // documents seen by Fit
}

// NewVectorizer creates a vectorizer extracting n-grams with n in
// [ngramRange[0], ngramRange[1]]. Use {1, 1} for unigrams and {1, 2} for
// unigrams plus bigrams.
func NewVectorizer(ngramRange [2]int) *Vectorizer {
	return &Vectorizer{ngramRange: ngramRange}
}

// NgramRange returns the configured n-gram range.
func (v *Vectorizer) NgramRange() [2]int {
	return v.ngramRange
}

// Fit learns the vocabulary and document frequencies from docs.
//
// Parameters:
//   - docs: one token sequence per document
//
// Returns:
//   - error: ErrEmptyVocabulary if no document contributes a term
//
// Column indices are assigned in lexicographic term order so that identical
// corpora always produce identical matrices.
func (v *Vectorizer) Fit(docs [][]string) error {
	if v.ngramRange[0] < 1 || v.ngramRange[1] < v.ngramRange[0] {
		return fmt.Errorf("%w: %v", ErrInvalidNgramRange, v.ngramRange)
	}

	docFrequencies := make(map[string]int)
	for _, doc := range docs {
		for term := range calculateTermCounts(ngrams(doc, v.ngramRange[0], v.ngramRange[1])) {
			docFrequencies[term]++
		}
	}

	if len(docFrequencies) == 0 {
		return fmt.Errorf("%w: %d documents produced no terms", ErrEmptyVocabulary, len(docs))
	}

	terms := make([]string, 0, len(docFrequencies))
	for term := range docFrequencies {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFrequencies[term]))) + 1
	}

	v.vocabulary = vocabulary
	v.terms = terms
	v.idf = idf
	v.docCount = len(docs)

	slog.Debug("TF-IDF vocabulary fitted", "documents", len(docs), "terms", len(terms), "ngramRange", v.ngramRange)
	return nil
}

// Transform converts docs into TF-IDF rows over the fitted vocabulary.
// Terms outside the vocabulary are ignored; a document without known terms
// becomes an all-zero row.
func (v *Vectorizer) Transform(docs [][]string) (features.Matrix, error) {
	if v.vocabulary == nil {
		return features.Matrix{}, ErrNotFitted
	}

	m := features.Matrix{Dim: len(v.terms), Rows: make([]features.Vector, len(docs))}
	for i, doc := range docs {
		weights := make(map[int]float64)
		for term, count := range calculateTermCounts(ngrams(doc, v.ngramRange[0], v.ngramRange[1])) {
			col, ok := v.vocabulary[term]
			if !ok {
				continue // term not in vocabulary
			}
			weights[col] = float64(count) * v.idf[col]
		}
		m.Rows[i] = features.FromMap(weights).Normalize()
	}
	return m, nil
}

// FitTransform fits the vocabulary on docs and returns their TF-IDF rows.
func (v *Vectorizer) FitTransform(docs [][]string) (features.Matrix, error) {
	if err := v.Fit(docs); err != nil {
		return features.Matrix{}, err
	}
	return v.Transform(docs)
}

// Dim returns the vocabulary size (0 before Fit).
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Vocabulary returns a copy of the term -> column mapping.
func (v *Vectorizer) Vocabulary() map[string]int {
	out := make(map[string]int, len(v.vocabulary))
	for term, col := range v.vocabulary {
		out[term] = col
	}
	return out
}

// Term returns the term stored at column col.
func (v *Vectorizer) Term(col int) string {
	if col < 0 || col >= len(v.terms) {
		return ""
	}
	return v.terms[col]
}

// IDF returns a copy of the per-column IDF weights.
func (v *Vectorizer) IDF() []float64 {
	return append([]float64(nil), v.idf...)
}

// TopTerms returns the n terms with the highest weight, where weights is
// indexed by column. Ties are broken by column order.
func (v *Vectorizer) TopTerms(weights []float64, n int) []string {
	cols := make([]int, 0, len(weights))
	for col := range weights {
		if col < len(v.terms) {
			cols = append(cols, col)
		}
	}
	sort.SliceStable(cols, func(i, j int) bool {
		return weights[cols[i]] > weights[cols[j]]
	})

	if n > len(cols) {
		n = len(cols)
	}
	out := make([]string, 0, n)
	for _, col := range cols[:n] {
		out = append(out, v.terms[col])
	}
	return out
}

// ngrams returns every contiguous n-gram of tokens with n in [minN, maxN],
// joining the tokens of each n-gram with a single space.
func ngrams(tokens []string, minN, maxN int) []string {
	if len(tokens) == 0 {
		return []string{}
	}

	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// calculateTermCounts counts occurrences of each term, skipping empty terms.
func calculateTermCounts(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		counts[term]++
	}
	return counts
}
