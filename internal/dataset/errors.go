package dataset

import "errors"

var (
	// ErrMissingColumn is returned when a source lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrNoData is returned when no source files are found.
	ErrNoData = errors.New("no data")
	// ErrUnknownTarget is returned for a target other than "label" or "city".
	ErrUnknownTarget = errors.New("unknown target")
)
