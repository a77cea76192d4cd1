package balance

import "errors"

var (
	// ErrInsufficientClassSamples is returned when a class has a single row,
	// leaving no neighbor to interpolate towards.
	ErrInsufficientClassSamples = errors.New("insufficient class samples")
	// ErrLengthMismatch is returned when rows and labels differ in length.
	ErrLengthMismatch = errors.New("rows and labels differ in length")
	// ErrInvalidNeighbors is returned for a neighbor count below one.
	ErrInvalidNeighbors = errors.New("neighbor count must be at least 1")
)
