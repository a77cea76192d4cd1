package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// QADI column names
const (
	qadiText  = "text"
	qadiLabel = "label"
)

// qadiStems lists the accepted file name stems of each split, in lookup order.
var qadiStems = map[Split][]string{
	Train:      {"train", "train-00000-of-00001"},
	Validation: {"validation", "validation-00000-of-00001", "dev"},
	Test:       {"test", "test-00000-of-00001"},
}

// LoadQADI reads the train, validation and test files from dir. Each split
// may be a .tsv or .csv file; every split is required. QADI has no city, so
// City is always Unknown.
func LoadQADI(ctx context.Context, dir string) (Splits, error) {
	var out Splits
	for _, split := range []Split{Train, Validation, Test} {
		path, err := findSplitFile(dir, qadiStems[split])
		if err != nil {
			return Splits{}, fmt.Errorf("%s split: %w", split, err)
		}

		t, err := readTable(ctx, path, qadiText, qadiLabel)
		if err != nil {
			return Splits{}, err
		}

		docs := make([]Document, 0, len(t.rows))
		for i := range t.rows {
			docs = append(docs, Document{
				Text:  t.cell(i, qadiText),
				Label: t.cell(i, qadiLabel),
				City:  Unknown,
			})
		}

		switch split {
		case Train:
			out.Train = docs
		case Validation:
			out.Validation = docs
		case Test:
			out.Test = docs
		}
		slog.Debug("loaded QADI split", "split", string(split), "file", filepath.Base(path), "rows", len(docs))
	}
	return out, nil
}

// findSplitFile returns the first existing <stem>.tsv or <stem>.csv in dir.
func findSplitFile(dir string, stems []string) (string, error) {
	for _, stem := range stems {
		for _, ext := range []string{".tsv", ".csv"} {
			path := filepath.Join(dir, stem+ext)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", path, err)
			}
		}
	}
	return "", fmt.Errorf("%w: none of %v with .tsv or .csv in %s", ErrNoData, stems, dir)
}
