package app

import (
	"sort"
	"time"

	"github.com/chriscorrea/dialect/internal/counter"
	"github.com/chriscorrea/dialect/internal/dataset"
	"github.com/chriscorrea/dialect/internal/metrics"
	"github.com/chriscorrea/dialect/internal/pipeline"
)

// Report is everything a training run produced.
type Report struct {
	RunID    string         `json:"run_id"`
	Target   string         `json:"target"`
	Dataset  []SplitSummary `json:"dataset"`
	Duration time.Duration  `json:"duration_ns"`

	Search     *pipeline.SearchResult `json:"search"`
	Validation *metrics.Report        `json:"validation,omitempty"` // nil when the split had no labelled rows
	Test       *metrics.Report        `json:"test,omitempty"`
	TopTerms   []ClassTerms           `json:"top_terms,omitempty"`
}

// SplitSummary describes one loaded split.
type SplitSummary struct {
	Split    string        `json:"split"`
	Rows     int           `json:"rows"`
	Labelled int           `json:"labelled"`  // rows with a usable target label
	NoTokens int           `json:"no_tokens"` // rows normalized to nothing
	Cities   int           `json:"cities"`    // distinct cities, "unknown" included
	Labels   []LabelCount  `json:"labels"`    // most frequent first
	Lengths  counter.Stats `json:"lengths"`   // raw text lengths
}

// LabelCount is the number of rows carrying one label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ClassTerms lists the most probable terms of one class.
type ClassTerms struct {
	Class string   `json:"class"`
	Terms []string `json:"terms"`
}

func summarize(split dataset.Split, docs []dataset.Document, p preparedSplit, target dataset.Target, c counter.Counter) SplitSummary {
	s := SplitSummary{
		Split:   string(split),
		Rows:    len(docs),
		Cities:  len(dataset.UniqueCities(docs)),
		Labels:  sortedCounts(dataset.LabelCounts(docs, target)),
		Lengths: counter.Summarize(c, p.texts),
	}
	for _, lc := range s.Labels {
		s.Labelled += lc.Count
	}
	for _, tokens := range p.tokens {
		if len(tokens) == 0 {
			s.NoTokens++
		}
	}
	return s
}

// sortedCounts orders counts by descending count, then label.
func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
