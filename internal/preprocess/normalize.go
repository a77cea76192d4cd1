// Package preprocess turns raw Arabic text into the token sequences consumed
// by the feature extractor.
//
// Normalization runs five steps in a fixed order:
//  1. character filter: keep only the Arabic block and whitespace, then drop
//     digits, then drop anything that is not a word character
//  2. canonicalization: strip Arabic-Indic digits, fold Alef variants to a
//     bare Alef, turn underscores into spaces
//  3. trim
//  4. UAX #29 word segmentation, optionally over the shaped, visually
//     ordered text
//  5. stopword removal (exact code point match)
//
// Usage Example:
//
//	n := preprocess.NewNormalizer()
//	tokens := n.Normalize("في المدرسة اليوم") // ["المدرسة", "اليوم"]
//
// Normalize is total: it never panics and returns an empty slice for any
// input that is not a string. A Normalizer is immutable and safe for
// concurrent use.
package preprocess

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

const (
	arabicFirst = 0x0600
	arabicLast  = 0x06FF
	alef        = 'ا'
)

// alefVariants are folded to a bare alef: alef wasla, alef with hamza below,
// alef with hamza above, alef with madda, and the final madda presentation form.
var alefVariants = map[rune]struct{}{
	'ٱ': {}, 'إ': {}, 'أ': {}, 'آ': {}, 'ﺂ': {},
}

// Normalizer cleans and tokenizes Arabic text.
type Normalizer struct {
	stopwords map[string]struct{}
	reshape   bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStopwords replaces the built-in stopword list. A nil or empty list
// disables stopword removal.
func WithStopwords(list []string) Option {
	return func(n *Normalizer) {
		n.stopwords = buildStopwordSet(list)
	}
}

// WithReshape toggles contextual shaping and bidi display ordering ahead of
// segmentation (on by default).
func WithReshape(enabled bool) Option {
	return func(n *Normalizer) {
		n.reshape = enabled
	}
}

// NewNormalizer creates a Normalizer with the default stopword list and
// reshaping enabled, then applies opts.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		stopwords: buildStopwordSet(defaultStopwords),
		reshape:   true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// buildStopwordSet canonicalizes each entry the same way input text is
// canonicalized, so that e.g. "إلى" matches the normalized token "الى".
func buildStopwordSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, w := range list {
		w = strings.TrimSpace(canonicalize(filterChars(w)))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// IsStopword reports whether token is in the normalizer's stopword set.
func (n *Normalizer) IsStopword(token string) bool {
	_, ok := n.stopwords[token]
	return ok
}

// Normalize returns the cleaned tokens of v in their original order. Any v
// that is not a string yields an empty slice.
func (n *Normalizer) Normalize(v any) (tokens []string) {
	text, ok := v.(string)
	if !ok {
		return []string{}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Normalization failed, returning empty tokens", "panic", r)
			tokens = []string{}
		}
	}()

	text = norm.NFC.String(strings.ToValidUTF8(text, ""))
	text = strings.TrimSpace(canonicalize(filterChars(text)))
	if text == "" {
		return []string{}
	}

	tokens = make([]string, 0, strings.Count(text, " ")+1)
	for _, tok := range n.tokenize(text) {
		if !n.IsStopword(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// NormalizeText returns the cleaned tokens of v joined by single spaces.
func (n *Normalizer) NormalizeText(v any) string {
	return strings.Join(n.Normalize(v), " ")
}

// NormalizeAll normalizes each text independently.
func (n *Normalizer) NormalizeAll(texts []string) [][]string {
	out := make([][]string, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}

// filterChars applies the character filter: Arabic block and whitespace only,
// no digits, and only word characters (letters, numbers, underscore).
func filterChars(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		if r < arabicFirst || r > arabicLast {
			return -1
		}
		if unicode.IsDigit(r) {
			return -1
		}
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_' {
			return -1
		}
		return r
	}, text)
}

// canonicalize strips Arabic-Indic digits, folds Alef variants and replaces
// underscores with spaces.
func canonicalize(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '٠' && r <= '٩' {
			return -1
		}
		if _, ok := alefVariants[r]; ok {
			return alef
		}
		if r == '_' {
			return ' '
		}
		return r
	}, text)
}

// tokenize splits text into word tokens. With reshaping enabled the text is
// segmented in its shaped visual form and each token is mapped back to
// logical order and base letters.
func (n *Normalizer) tokenize(text string) []string {
	if !n.reshape {
		return segment(text)
	}

	// after filtering only right-to-left letters remain, so the display order
	// of the single collapsed line is its full reversal
	line := strings.Join(strings.Fields(text), " ")
	visual := segment(bidi.ReverseString(Shape(line)))
	tokens := make([]string, len(visual))
	for i, seg := range visual {
		tokens[len(visual)-1-i] = Unshape(bidi.ReverseString(seg))
	}
	return tokens
}

// segment returns the UAX #29 word segments of text that contain at least one
// letter or number.
func segment(text string) []string {
	var out []string
	segments := words.FromString(text)
	for segments.Next() {
		seg := segments.Value()
		if strings.IndexFunc(seg, isWordRune) >= 0 {
			out = append(out, seg)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
