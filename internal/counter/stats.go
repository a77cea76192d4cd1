package counter

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes text lengths over a collection of documents.
type Stats struct {
	Method    string  `json:"method"`
	Documents int     `json:"documents"`
	Empty     int     `json:"empty"` // documents counting zero units
	Total     int     `json:"total"`
	Mean      float64 `json:"mean"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
}

// Summarize counts every text with c and aggregates the results.
func Summarize(c Counter, texts []string) Stats {
	s := Stats{Method: c.Name(), Documents: len(texts)}
	if len(texts) == 0 {
		return s
	}

	counts := make([]float64, len(texts))
	s.Min = -1
	for i, text := range texts {
		n := c.Count(text)
		counts[i] = float64(n)
		s.Total += n
		if n == 0 {
			s.Empty++
		}
		if s.Min < 0 || n < s.Min {
			s.Min = n
		}
		if n > s.Max {
			s.Max = n
		}
	}
	s.Mean = stat.Mean(counts, nil)

	slog.Debug("Corpus statistics calculated", "method", s.Method, "documents", s.Documents, "total", s.Total)
	return s
}
