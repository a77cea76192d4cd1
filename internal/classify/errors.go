package classify

import "errors"

var (
	// ErrEmptyTrainingSet is returned when fitting on zero rows.
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrNegativeFeature is returned when a feature value is negative; the
	// multinomial model only accepts non-negative weights.
	ErrNegativeFeature = errors.New("negative feature value")
	// ErrInvalidAlpha is returned for a smoothing parameter <= 0.
	ErrInvalidAlpha = errors.New("alpha must be positive")
	// ErrLengthMismatch is returned when rows and labels differ in length.
	ErrLengthMismatch = errors.New("rows and labels differ in length")
	// ErrNotFitted is returned when predicting before Fit.
	ErrNotFitted = errors.New("classifier not fitted")
	// ErrDimensionMismatch is returned when the input column count differs
	// from the fitted one.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
