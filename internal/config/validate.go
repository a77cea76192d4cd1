package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate performs range checks on the loaded configuration. Data
// directories are not required here since flags may still supply them.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Data.Target) {
	case "label", "city":
	default:
		return fmt.Errorf("%w: data.target must be label or city (got %q)", ErrInvalid, c.Data.Target)
	}

	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level must be debug, info, warn or error (got %q)", ErrInvalid, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json (got %q)", ErrInvalid, c.Log.Format)
	}

	switch strings.ToLower(c.Output.Format) {
	case "markdown", "md", "text", "json":
	default:
		return fmt.Errorf("%w: output.format must be markdown, text or json (got %q)", ErrInvalid, c.Output.Format)
	}
	if c.Output.TopTerms < 0 {
		return fmt.Errorf("%w: output.top_terms must be >= 0 (got %d)", ErrInvalid, c.Output.TopTerms)
	}

	return nil
}

func (p *PipelineConfig) validate() error {
	if p.KNeighbors < 1 {
		return fmt.Errorf("%w: k_neighbors must be >= 1 (got %d)", ErrInvalid, p.KNeighbors)
	}
	if p.Folds < 2 {
		return fmt.Errorf("%w: folds must be >= 2 (got %d)", ErrInvalid, p.Folds)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0 (got %d)", ErrInvalid, p.Workers)
	}
	if len(p.Alphas) == 0 {
		return fmt.Errorf("%w: alphas must not be empty", ErrInvalid)
	}
	for _, a := range p.Alphas {
		if !(a > 0) {
			return fmt.Errorf("%w: alpha must be > 0 (got %v)", ErrInvalid, a)
		}
	}
	if len(p.NgramMax) == 0 {
		return fmt.Errorf("%w: ngram_max must not be empty", ErrInvalid)
	}
	for _, n := range p.NgramMax {
		if n < 1 {
			return fmt.Errorf("%w: ngram_max must be >= 1 (got %d)", ErrInvalid, n)
		}
	}
	return nil
}

// NgramRanges expands NgramMax into (1, n) ranges.
func (p PipelineConfig) NgramRanges() [][2]int {
	out := make([][2]int, len(p.NgramMax))
	for i, n := range p.NgramMax {
		out[i] = [2]int{1, n}
	}
	return out
}
