package counter

import (
	"unicode"
)

// CharCounter counts Unicode characters (runes), not bytes. Whitespace is
// excluded so joined tokens count the same as the letters they hold.
type CharCounter struct{}

// NewCharCounter creates a new CharCounter instance.
func NewCharCounter() Counter {
	return &CharCounter{}
}

// Count returns the number of non-space runes in the given text.
func (cc *CharCounter) Count(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// Name returns the name of this counting method for logging and debugging.
func (cc *CharCounter) Name() string {
	return "characters"
}
