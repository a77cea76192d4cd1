package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// MADAR column names
const (
	madarText  = "sent"
	madarCity  = "lang"
	madarSplit = "split"
)

// LoadMADAR reads every *.tsv file in dir and routes each row by the suffix
// of its split column ("...train", "...dev", "...test"). Rows with any other
// split are ignored. The city column doubles as the label.
func LoadMADAR(ctx context.Context, dir string) (Splits, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return Splits{}, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return Splits{}, fmt.Errorf("%w: no .tsv files in %s", ErrNoData, dir)
	}
	sort.Strings(files)

	var out Splits
	for _, file := range files {
		t, err := readTable(ctx, file, madarText, madarCity, madarSplit)
		if err != nil {
			return Splits{}, err
		}

		skipped := 0
		for i := range t.rows {
			city := t.cell(i, madarCity)
			d := Document{Text: t.cell(i, madarText), Label: city, City: city}

			switch split := t.cell(i, madarSplit); {
			case strings.HasSuffix(split, "train"):
				out.Train = append(out.Train, d)
			case strings.HasSuffix(split, "dev"):
				out.Validation = append(out.Validation, d)
			case strings.HasSuffix(split, "test"):
				out.Test = append(out.Test, d)
			default:
				skipped++
			}
		}
		slog.Debug("loaded MADAR file", "file", filepath.Base(file), "rows", len(t.rows), "skipped", skipped)
	}
	return out, nil
}
