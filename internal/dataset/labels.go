package dataset

// Unknown marks a categorical field the source did not provide.
const Unknown = "unknown"

// IsLabeled reports whether label can be learned or scored: it must be
// non-empty and not the Unknown sentinel.
func IsLabeled(label string) bool {
	return label != "" && label != Unknown
}
