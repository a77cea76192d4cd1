package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chriscorrea/dialect/internal/counter"
	"github.com/chriscorrea/dialect/internal/dataset"
	"github.com/chriscorrea/dialect/internal/metrics"
	"github.com/chriscorrea/dialect/internal/pipeline"
	"github.com/chriscorrea/dialect/internal/preprocess"
)

var cityVocab = map[string][]string{
	"BEI": {"شو", "هلق", "كتير", "منيح", "بدي"},
	"CAI": {"ازاي", "كده", "عايز", "دلوقتي", "اوي"},
	"RAB": {"واش", "بزاف", "دابا", "زوين", "بغيت"},
}

// writeCorpora writes a small MADAR corpus (ten train rows, two dev rows and
// two test rows per city) and a QADI corpus whose rows carry no city.
func writeCorpora(t *testing.T) dataset.Sources {
	t.Helper()

	shared := []string{"الجو", "اليوم"}
	var b strings.Builder
	b.WriteString("sent\tlang\tsplit\n")
	for _, city := range []string{"BEI", "CAI", "RAB"} {
		words := cityVocab[city]
		for i := range 10 {
			b.WriteString(words[i%5] + " " + words[(i+1)%5] + " " + shared[i%2] + "\t" + city + "\tcorpus-26-train\n")
		}
		for i := range 2 {
			b.WriteString(words[i] + " " + words[i+2] + "\t" + city + "\tcorpus-26-dev\n")
			b.WriteString(words[i+2] + " " + words[(i+4)%5] + "\t" + city + "\tcorpus-26-test\n")
		}
	}

	madar := t.TempDir()
	writeFile(t, madar, "MADAR-Corpus-26.tsv", b.String())

	qadi := t.TempDir()
	writeFile(t, qadi, "train.tsv", "text\tlabel\nانا رايح\tEG\nشلونك\tIQ\nايش تبي\tSA\n")
	writeFile(t, qadi, "validation.tsv", "text\tlabel\nوين رايح\tJO\n")
	writeFile(t, qadi, "test.tsv", "text\tlabel\nكيف حالك\tSY\n")

	return dataset.Sources{MADARDir: madar, QADIDir: qadi}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()

	search := pipeline.DefaultSearchConfig()
	search.Folds = 3
	search.Workers = 2

	return Config{
		Sources:        writeCorpora(t),
		Target:         dataset.TargetCity,
		Search:         search,
		CountingMethod: counter.Words,
		TopTerms:       3,
		Quiet:          true,
	}
}

func TestTrain(t *testing.T) {
	cfg := testConfig(t)

	report, err := Train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Train() unexpected error: %v", err)
	}

	if report.RunID == "" {
		t.Error("RunID is empty")
	}
	if report.Target != "city" {
		t.Errorf("Target = %q, want city", report.Target)
	}

	if len(report.Dataset) != 3 {
		t.Fatalf("Dataset has %d splits, want 3", len(report.Dataset))
	}
	train := report.Dataset[0]
	if train.Split != "train" || train.Rows != 33 || train.Labelled != 30 || train.Cities != 4 {
		t.Errorf("train summary = %+v", train)
	}
	if len(train.Labels) != 3 || train.Labels[0] != (LabelCount{Label: "BEI", Count: 10}) {
		t.Errorf("train labels = %+v", train.Labels)
	}
	if train.Lengths.Method != "words" || train.Lengths.Documents != 33 {
		t.Errorf("train lengths = %+v", train.Lengths)
	}

	s := report.Search
	if s == nil || s.Pipeline == nil {
		t.Fatal("Search result or pipeline missing")
	}
	if len(s.Candidates) != 6 {
		t.Errorf("Candidates = %d, want 6", len(s.Candidates))
	}
	if s.TrainingRows != 30 || s.DroppedRows != 3 {
		t.Errorf("TrainingRows, DroppedRows = %d, %d, want 30, 3", s.TrainingRows, s.DroppedRows)
	}

	for name, m := range map[string]*metrics.Report{"validation": report.Validation, "test": report.Test} {
		if m == nil {
			t.Fatalf("%s report missing", name)
		}
		if m.Support != 6 || m.Dropped != 1 {
			t.Errorf("%s Support, Dropped = %d, %d, want 6, 1", name, m.Support, m.Dropped)
		}
		if m.Accuracy != 1 {
			t.Errorf("%s Accuracy = %f, want 1", name, m.Accuracy)
		}
	}

	if len(report.TopTerms) != 3 {
		t.Fatalf("TopTerms = %d classes, want 3", len(report.TopTerms))
	}
	for _, ct := range report.TopTerms {
		if len(ct.Terms) != 3 {
			t.Errorf("TopTerms(%s) = %v, want 3 terms", ct.Class, ct.Terms)
		}
	}
}

func TestTrain_Errors(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Sources = dataset.Sources{}
		if _, err := Train(context.Background(), cfg); !errors.Is(err, dataset.ErrNoData) {
			t.Errorf("Train() error = %v, want %v", err, dataset.ErrNoData)
		}
	})

	t.Run("empty train split", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "corpus.tsv", "sent\tlang\tsplit\nشو بدك\tBEI\tcorpus-26-dev\n")

		cfg := testConfig(t)
		cfg.Sources = dataset.Sources{MADARDir: dir}
		if _, err := Train(context.Background(), cfg); !errors.Is(err, dataset.ErrNoData) {
			t.Errorf("Train() error = %v, want %v", err, dataset.ErrNoData)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Train(ctx, testConfig(t)); !errors.Is(err, context.Canceled) {
			t.Errorf("Train() error = %v, want %v", err, context.Canceled)
		}
	})
}

func TestRun_Formats(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{Markdown, []string{"# Dialect identification report", "## Grid search", "**best**", "### Test confusion matrix", "| BEI |"}},
		{Text, []string{"DATASET", "GRID SEARCH", "VALIDATION", "TOP TERMS"}},
		{JSON, []string{`"run_id"`, `"candidates"`, `"confusion_matrix"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			cfg.OutputFormat = tt.format
			out, err := Run(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Run() output missing %q", want)
				}
			}
			if tt.format == JSON {
				var decoded map[string]any
				if err := json.Unmarshal([]byte(out), &decoded); err != nil {
					t.Errorf("JSON output does not decode: %v", err)
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	report := &Report{
		RunID:  "run",
		Target: "label",
		Dataset: []SplitSummary{{
			Split:    "train",
			Rows:     2,
			Labelled: 2,
			Labels:   []LabelCount{{Label: "مصر", Count: 2}},
		}},
		TopTerms: []ClassTerms{{Class: "مصر", Terms: []string{"ازاي"}}},
	}

	plain, err := Render(report, Text, false)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if !strings.Contains(plain, "مصر") || !strings.Contains(plain, "no labelled rows") {
		t.Errorf("Render(Text) = %q", plain)
	}

	visual, err := Render(report, Text, true)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if !strings.Contains(visual, preprocess.Visual("ازاي")) || strings.Contains(visual, "ازاي") {
		t.Errorf("Render(Text, visual) did not reshape terms: %q", visual)
	}

	if _, err := Render(nil, Markdown, false); err == nil {
		t.Error("Render(nil) expected error")
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"markdown", Markdown, false},
		{"md", Markdown, false},
		{"", Markdown, false},
		{"text", Text, false},
		{"txt", Text, false},
		{"json", JSON, false},
		{"yaml", Markdown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputFormatString(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{Markdown, "Markdown"},
		{Text, "Text"},
		{JSON, "JSON"},
		{OutputFormat(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("OutputFormat(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestSortedCounts(t *testing.T) {
	got := sortedCounts(map[string]int{"RAB": 2, "BEI": 5, "CAI": 2})
	want := []LabelCount{{"BEI", 5}, {"CAI", 2}, {"RAB", 2}}
	if len(got) != len(want) {
		t.Fatalf("sortedCounts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedCounts()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
