package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chriscorrea/dialect/internal/fetch"
)

// table is a delimited file with a header row.
type table struct {
	path    string
	columns map[string]int // header name -> position
	rows    [][]string
}

// readTable reads a CSV or TSV file, chosen by extension, and checks that
// every required column is present in the header.
func readTable(ctx context.Context, path string, required ...string) (*table, error) {
	rc, err := fetch.GetContent(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
		reader.LazyQuotes = true
	}
	reader.FieldsPerRecord = -1 // allow variable column count

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoData, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", filepath.Base(path), err)
	}

	t := &table{path: path, columns: make(map[string]int, len(header))}
	for i, name := range header {
		t.columns[cleanCell(name)] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, filepath.Base(path))
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// cell returns the value of column name in row i, or "" when the row is
// short.
func (t *table) cell(i int, name string) string {
	pos := t.columns[name]
	if pos >= len(t.rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.rows[i][pos])
}

// cleanCell trims whitespace and a UTF-8 byte order mark from a header cell.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
}
