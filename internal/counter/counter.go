// Package counter measures text length for corpus statistics in the dialect
// report.
//
// This package implements several counting strategies: word counting,
// character counting, and token counting (using OpenAI's tiktoken with the
// cl100k_base encoding). The default strategy counts words, which needs no
// encoding data.
//
// Usage Example:
//
//	c, err := counter.NewCounter(counter.Words)
//	stats := counter.Summarize(c, texts)
//
// The package supports multiple counting methods through the Counter interface,
// making it easy to switch between strategies with the --count flag.
package counter

import (
	"fmt"
	"strings"
)

// Counter defines the interface for different text counting strategies.
type Counter interface {
	// Count returns the number of units (tokens, words, or characters) in given text.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for logging)
	Name() string
}

// CountingMethod represents the different available counting strategies.
type CountingMethod int

const (
	// Words counts whitespace-separated words (default)
	Words CountingMethod = iota
	// Characters counts Unicode characters excluding whitespace
	Characters
	// Tokens uses tiktoken with cl100k_base encoding
	Tokens
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// ParseMethod converts a flag value into a CountingMethod.
func ParseMethod(s string) (CountingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "words":
		return Words, nil
	case "characters", "chars":
		return Characters, nil
	case "tokens":
		return Tokens, nil
	}
	return Words, fmt.Errorf("unknown counting method %q (want words, characters or tokens)", s)
}

// NewCounter creates a new Counter instance based on the specified method.
// Returns an error if the counter cannot be initialized (e.g., tiktoken encoding fails).
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Tokens:
		return NewTokenCounter()
	case Characters:
		return NewCharCounter(), nil
	default:
		return NewWordCounter(), nil
	}
}
