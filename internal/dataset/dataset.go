// Package dataset loads the MADAR and QADI corpora, merges them per split and
// removes duplicates.
//
// MADAR ships as tab-separated files with a "sent" text column, a "lang"
// city column and a "split" column whose suffix names the split. QADI ships
// one file per split with "text" and "label" (country) columns and carries no
// city, so its city is always Unknown.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Split names a partition of the data.
type Split string

// Available splits
const (
	Train      Split = "train"
	Validation Split = "validation"
	Test       Split = "test"
)

// Document is one raw labelled text sample.
type Document struct {
	Text  string `json:"text"`
	Label string `json:"label"` // dialect or country code, "" when missing
	City  string `json:"city"`  // city code or Unknown
}

// Splits holds the documents of each partition.
type Splits struct {
	Train      []Document
	Validation []Document
	Test       []Document
}

// Get returns the documents of split s.
func (s Splits) Get(split Split) []Document {
	switch split {
	case Train:
		return s.Train
	case Validation:
		return s.Validation
	case Test:
		return s.Test
	}
	return nil
}

// Target selects which field of a Document is the class to learn.
type Target string

// Supported targets
const (
	TargetLabel Target = "label"
	TargetCity  Target = "city"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetLabel, TargetCity:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Of returns the class of d under target t.
func (t Target) Of(d Document) string {
	if t == TargetCity {
		return d.City
	}
	return d.Label
}

// Sources locates the corpora on disk. An empty directory skips that corpus.
type Sources struct {
	MADARDir string
	QADIDir  string
}

// Load reads every configured corpus and merges them per split, MADAR rows
// first. Rows missing text or label are dropped and duplicate (text, label)
// pairs keep their first occurrence.
func Load(ctx context.Context, src Sources) (Splits, error) {
	if src.MADARDir == "" && src.QADIDir == "" {
		return Splits{}, fmt.Errorf("%w: no source directory configured", ErrNoData)
	}

	var parts []Splits
	if src.MADARDir != "" {
		madar, err := LoadMADAR(ctx, src.MADARDir)
		if err != nil {
			return Splits{}, fmt.Errorf("madar: %w", err)
		}
		parts = append(parts, madar)
	}
	if src.QADIDir != "" {
		qadi, err := LoadQADI(ctx, src.QADIDir)
		if err != nil {
			return Splits{}, fmt.Errorf("qadi: %w", err)
		}
		parts = append(parts, qadi)
	}

	var merged Splits
	for _, p := range parts {
		merged.Train = append(merged.Train, p.Train...)
		merged.Validation = append(merged.Validation, p.Validation...)
		merged.Test = append(merged.Test, p.Test...)
	}
	merged.Train = Clean(merged.Train)
	merged.Validation = Clean(merged.Validation)
	merged.Test = Clean(merged.Test)

	for _, split := range []Split{Train, Validation, Test} {
		docs := merged.Get(split)
		slog.Info("split loaded", "split", string(split), "rows", len(docs), "cities", len(UniqueCities(docs)))
	}
	return merged, nil
}

// Clean drops rows without text or label, fills an empty city with Unknown
// and removes duplicate (text, label) pairs, keeping order.
func Clean(docs []Document) []Document {
	type key struct{ text, label string }
	seen := make(map[key]struct{}, len(docs))

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		d.Text = strings.TrimSpace(d.Text)
		d.Label = strings.TrimSpace(d.Label)
		d.City = strings.TrimSpace(d.City)
		if d.Text == "" || d.Label == "" {
			continue
		}
		if d.City == "" {
			d.City = Unknown
		}

		k := key{d.Text, d.Label}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

// UniqueCities returns the set of cities in docs.
func UniqueCities(docs []Document) map[string]struct{} {
	out := make(map[string]struct{})
	for _, d := range docs {
		out[d.City] = struct{}{}
	}
	return out
}

// LabelCounts counts documents per class under target t, skipping unusable
// labels.
func LabelCounts(docs []Document, t Target) map[string]int {
	out := make(map[string]int)
	for _, d := range docs {
		if label := t.Of(d); IsLabeled(label) {
			out[label]++
		}
	}
	return out
}
