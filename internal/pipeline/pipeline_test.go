package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/chriscorrea/dialect/internal/balance"
	"github.com/chriscorrea/dialect/internal/metrics"
	"github.com/chriscorrea/dialect/internal/preprocess"
	"github.com/chriscorrea/dialect/internal/tfidf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticCorpus returns a 50-row, three-class corpus where each class has
// its own vocabulary plus two shared words.
func syntheticCorpus() ([][]string, []string) {
	vocab := map[string][]string{
		"EG": {"ازاي", "كده", "عايز", "دلوقتي", "اوي"},
		"LB": {"شو", "هلق", "كتير", "منيح", "بدي"},
		"MA": {"واش", "بزاف", "دابا", "زوين", "بغيت"},
	}
	shared := []string{"الجو", "اليوم"}
	sizes := map[string]int{"EG": 17, "LB": 17, "MA": 16}

	var docs [][]string
	var labels []string
	for i := 0; i < 17; i++ {
		for _, class := range []string{"EG", "LB", "MA"} {
			if i >= sizes[class] {
				continue
			}
			words := vocab[class]
			docs = append(docs, []string{words[i%5], words[(i+1)%5], shared[i%2]})
			labels = append(labels, class)
		}
	}
	return docs, labels
}

func TestFit(t *testing.T) {
	t.Parallel()

	docs, labels := syntheticCorpus()
	p, err := Fit(docs, labels, Params{NgramRange: [2]int{1, 2}, Alpha: 0.5}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, Params{NgramRange: [2]int{1, 2}, Alpha: 0.5}, p.Params())
	assert.Equal(t, []string{"EG", "LB", "MA"}, p.Classes())
	assert.Contains(t, p.Vocabulary(), "شو هلق")

	predicted, err := p.Predict([][]string{{"شو", "بدي"}, {"عايز", "كده", "كلمة"}, {"بزاف"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"LB", "EG", "MA"}, predicted)

	top := p.TopTerms("MA", 3)
	require.Len(t, top, 3)
	assert.Nil(t, p.TopTerms("XX", 3))
}

func TestFit_Errors(t *testing.T) {
	t.Parallel()

	params := Params{NgramRange: [2]int{1, 1}, Alpha: 1}

	_, err := Fit(nil, nil, params, DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = Fit([][]string{{"a"}}, []string{"x", "y"}, params, DefaultOptions())
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Fit([][]string{{}, {}}, []string{"x", "x"}, params, DefaultOptions())
	require.ErrorIs(t, err, tfidf.ErrEmptyVocabulary)
}

func TestMixedInputScenario(t *testing.T) {
	t.Parallel()

	n := preprocess.NewNormalizer()
	raw := []any{"في المدرسة اليوم", "الجو جميل جدا", "12345", nil}
	docs := make([][]string, len(raw))
	for i, v := range raw {
		docs[i] = n.Normalize(v)
	}

	assert.Empty(t, docs[2])
	assert.Empty(t, docs[3])

	v := tfidf.NewVectorizer([2]int{1, 1})
	require.NoError(t, v.Fit(docs))
	assert.NotContains(t, v.Vocabulary(), "في")
	assert.Contains(t, v.Vocabulary(), "المدرسة")

	// class B has a single usable row
	_, err := Fit(docs, []string{"A", "B", "A", "A"}, Params{NgramRange: [2]int{1, 1}, Alpha: 1}, DefaultOptions())
	require.ErrorIs(t, err, balance.ErrInsufficientClassSamples)

	// every label unusable
	_, err = Train(context.Background(), docs, []string{"unknown", "", "unknown", ""}, DefaultSearchConfig())
	require.ErrorIs(t, err, ErrEmptyTrainingSet)

	// four rows cannot fill five folds
	_, err = Train(context.Background(), docs, []string{"A", "B", "A", "A"}, DefaultSearchConfig())
	require.ErrorIs(t, err, ErrTooFewRows)

	// with two folds a fold's training part holds one row of each class
	cfg := DefaultSearchConfig()
	cfg.Folds = 2
	_, err = Train(context.Background(), docs, []string{"A", "B", "A", "A"}, cfg)
	require.ErrorIs(t, err, balance.ErrInsufficientClassSamples)
	assert.Contains(t, err.Error(), "fold")
}

func TestTrain_GridSearch(t *testing.T) {
	t.Parallel()

	docs, labels := syntheticCorpus()
	require.Len(t, docs, 50)

	cfg := DefaultSearchConfig()
	cfg.Workers = 4

	result, err := Train(context.Background(), docs, labels, cfg)
	require.NoError(t, err)
	require.NotNil(t, result.Pipeline)

	require.Len(t, result.Candidates, 6)
	assert.Equal(t, cfg.Grid()[result.BestIndex], result.Best)
	assert.Equal(t, result.Best, result.Pipeline.Params())
	assert.Equal(t, 50, result.TrainingRows)
	assert.Zero(t, result.DroppedRows)

	for i, c := range result.Candidates {
		assert.Len(t, c.FoldScores, cfg.Folds)
		assert.GreaterOrEqual(t, result.BestScore, c.MeanScore, "candidate %d", i)
		if c.MeanScore == result.BestScore {
			// ties keep the earliest candidate
			assert.GreaterOrEqual(t, i, result.BestIndex)
		}
	}

	predicted, err := result.Pipeline.Predict(docs)
	require.NoError(t, err)
	refit := metrics.Accuracy(labels, predicted)
	for _, c := range result.Candidates {
		assert.GreaterOrEqual(t, refit, c.MeanScore)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	t.Parallel()

	docs, labels := syntheticCorpus()
	labels[0] = "unknown"
	labels[1] = ""

	serial := DefaultSearchConfig()
	serial.Workers = 1
	parallel := DefaultSearchConfig()
	parallel.Workers = 8

	first, err := Train(context.Background(), docs, labels, serial)
	require.NoError(t, err)
	second, err := Train(context.Background(), docs, labels, parallel)
	require.NoError(t, err)

	assert.Equal(t, 48, first.TrainingRows)
	assert.Equal(t, 2, first.DroppedRows)
	assert.Equal(t, first.Candidates, second.Candidates)
	assert.Equal(t, first.Best, second.Best)
	assert.Equal(t, first.Pipeline, second.Pipeline)
	assert.NotContains(t, first.Pipeline.Classes(), "unknown")

	r1, err := metrics.Evaluate(first.Pipeline, docs, labels)
	require.NoError(t, err)
	r2, err := metrics.Evaluate(second.Pipeline, docs, labels)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestTrain_InvalidConfig(t *testing.T) {
	t.Parallel()

	docs, labels := syntheticCorpus()

	cfg := DefaultSearchConfig()
	cfg.Alphas = nil
	_, err := Train(context.Background(), docs, labels, cfg)
	require.ErrorIs(t, err, ErrInvalidSearch)

	cfg = DefaultSearchConfig()
	cfg.Folds = 1
	_, err = Train(context.Background(), docs, labels, cfg)
	require.ErrorIs(t, err, ErrInvalidSearch)

	_, err = Train(context.Background(), docs, labels[:3], DefaultSearchConfig())
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestTrain_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, labels := syntheticCorpus()
	_, err := Train(ctx, docs, labels, DefaultSearchConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearchConfig_Grid(t *testing.T) {
	t.Parallel()

	grid := DefaultSearchConfig().Grid()
	assert.Equal(t, []Params{
		{NgramRange: [2]int{1, 1}, Alpha: 0.5},
		{NgramRange: [2]int{1, 1}, Alpha: 0.8},
		{NgramRange: [2]int{1, 1}, Alpha: 1.0},
		{NgramRange: [2]int{1, 2}, Alpha: 0.5},
		{NgramRange: [2]int{1, 2}, Alpha: 0.8},
		{NgramRange: [2]int{1, 2}, Alpha: 1.0},
	}, grid)
	assert.Equal(t, "ngram=(1,2) alpha=0.8", grid[4].String())
}

func TestStratifiedFolds(t *testing.T) {
	t.Parallel()

	folds := StratifiedFolds([]string{"b", "a", "b", "a", "a"}, 2)
	assert.Equal(t, [][]int{{1, 2, 4}, {0, 3}}, folds)

	_, labels := syntheticCorpus()
	for _, fold := range StratifiedFolds(labels, 5) {
		assert.Len(t, fold, 10)
		counts := map[string]int{}
		for _, i := range fold {
			counts[labels[i]]++
		}
		assert.Len(t, counts, 3, "every fold holds every class")
	}
}

func TestCleanLabels(t *testing.T) {
	t.Parallel()

	docs := [][]string{{"a"}, {"b"}, {"c"}, {"d"}}
	outDocs, outLabels := CleanLabels(docs, []string{"EG", "unknown", "", "LB"})
	assert.Equal(t, [][]string{{"a"}, {"d"}}, outDocs)
	assert.Equal(t, []string{"EG", "LB"}, outLabels)
}

func TestComplement(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{0, 2, 4}, complement([]int{1, 3}, 5))
	assert.Equal(t, []int{}, complement([]int{0, 1}, 2))
}

func TestTrain_Progress(t *testing.T) {
	t.Parallel()

	docs, labels := syntheticCorpus()

	var calls atomic.Int64
	var maxDone atomic.Int64
	cfg := DefaultSearchConfig()
	cfg.Progress = func(done, total int) {
		calls.Add(1)
		assert.Equal(t, 30, total)
		for {
			cur := maxDone.Load()
			if int64(done) <= cur || maxDone.CompareAndSwap(cur, int64(done)) {
				break
			}
		}
	}

	_, err := Train(context.Background(), docs, labels, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(30), calls.Load())
	assert.Equal(t, int64(30), maxDone.Load())
}
