package pipeline

import (
	"errors"

	"github.com/chriscorrea/dialect/internal/classify"
)

var (
	// ErrEmptyTrainingSet is returned when no labelled rows remain.
	ErrEmptyTrainingSet = classify.ErrEmptyTrainingSet
	// ErrLengthMismatch is returned when documents and labels differ in length.
	ErrLengthMismatch = errors.New("documents and labels differ in length")
	// ErrTooFewRows is returned when there are fewer rows than folds.
	ErrTooFewRows = errors.New("fewer rows than folds")
	// ErrInvalidSearch is returned for an empty grid or fewer than two folds.
	ErrInvalidSearch = errors.New("invalid search configuration")
)
