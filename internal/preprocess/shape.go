package preprocess

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// joining describes how an Arabic letter connects to its neighbours and where
// its presentation forms start in the U+FE70 block.
type joining struct {
	form  rune // isolated presentation form; final, initial, medial follow
	forms int  // 1 non-joining, 2 right-joining, 4 dual-joining
}

const (
	lam     = 'ل'
	tatweel = 'ـ'
)

var joiningTable = map[rune]joining{
	'ء': {0xFE80, 1}, // hamza
	'آ': {0xFE81, 2}, // alef with madda
	'أ': {0xFE83, 2}, // alef with hamza above
	'ؤ': {0xFE85, 2}, // waw with hamza
	'إ': {0xFE87, 2}, // alef with hamza below
	'ئ': {0xFE89, 4}, // yeh with hamza
	'ا': {0xFE8D, 2}, // alef
	'ب': {0xFE8F, 4}, // beh
	'ة': {0xFE93, 2}, // teh marbuta
	'ت': {0xFE95, 4}, // teh
	'ث': {0xFE99, 4}, // theh
	'ج': {0xFE9D, 4}, // jeem
	'ح': {0xFEA1, 4}, // hah
	'خ': {0xFEA5, 4}, // khah
	'د': {0xFEA9, 2}, // dal
	'ذ': {0xFEAB, 2}, // thal
	'ر': {0xFEAD, 2}, // reh
	'ز': {0xFEAF, 2}, // zain
	'س': {0xFEB1, 4}, // seen
	'ش': {0xFEB5, 4}, // sheen
	'ص': {0xFEB9, 4}, // sad
	'ض': {0xFEBD, 4}, // dad
	'ط': {0xFEC1, 4}, // tah
	'ظ': {0xFEC5, 4}, // zah
	'ع': {0xFEC9, 4}, // ain
	'غ': {0xFECD, 4}, // ghain
	'ف': {0xFED1, 4}, // feh
	'ق': {0xFED5, 4}, // qaf
	'ك': {0xFED9, 4}, // kaf
	'ل': {0xFEDD, 4}, // lam
	'م': {0xFEE1, 4}, // meem
	'ن': {0xFEE5, 4}, // noon
	'ه': {0xFEE9, 4}, // heh
	'و': {0xFEED, 2}, // waw
	'ى': {0xFEEF, 2}, // alef maksura
	'ي': {0xFEF1, 4}, // yeh
}

// lamAlef maps the alef that follows a lam to the isolated form of the
// mandatory ligature; the final form is the next code point.
var lamAlef = map[rune]rune{
	'آ': 0xFEF5,
	'أ': 0xFEF7,
	'إ': 0xFEF9,
	'ا': 0xFEFB,
}

// joinsForward reports whether r connects to the letter that follows it.
func joinsForward(r rune) bool {
	if r == tatweel {
		return true
	}
	j, ok := joiningTable[r]
	return ok && j.forms == 4
}

// joinsBackward reports whether r connects to the letter that precedes it.
func joinsBackward(r rune) bool {
	if r == tatweel {
		return true
	}
	j, ok := joiningTable[r]
	return ok && j.forms > 1
}

// Shape replaces Arabic letters with their contextual presentation forms
// (isolated, final, initial, medial) and lam-alef ligatures. Runes outside the
// joining table pass through unchanged.
func Shape(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + len(text)/2)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		prevJoins := i > 0 && joinsForward(runes[i-1])

		if r == lam && i+1 < len(runes) {
			if lig, ok := lamAlef[runes[i+1]]; ok {
				if prevJoins {
					lig++
				}
				b.WriteRune(lig)
				i++
				continue
			}
		}

		j, ok := joiningTable[r]
		if !ok {
			b.WriteRune(r)
			continue
		}

		nextJoins := i+1 < len(runes) && joinsBackward(runes[i+1])
		switch {
		case j.forms == 1:
			b.WriteRune(j.form)
		case j.forms == 2 && prevJoins:
			b.WriteRune(j.form + 1)
		case j.forms == 2:
			b.WriteRune(j.form)
		case prevJoins && nextJoins:
			b.WriteRune(j.form + 3)
		case prevJoins:
			b.WriteRune(j.form + 1)
		case nextJoins:
			b.WriteRune(j.form + 2)
		default:
			b.WriteRune(j.form)
		}
	}

	return b.String()
}

// isPresentationForm reports whether r lies in one of the Arabic presentation
// form blocks.
func isPresentationForm(r rune) bool {
	return (r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF)
}

// Unshape folds presentation forms back to their base letters. It inverts
// Shape for every string Shape can produce.
func Unshape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isPresentationForm(r) {
			b.WriteString(norm.NFKC.String(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Display puts each line of text into visual (right-to-left) order when the
// line carries Arabic letters. Left-to-right lines are returned unchanged.
func Display(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if hasRTL(line) {
			lines[i] = bidi.ReverseString(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Visual shapes text and puts it in display order, ready to be written to a
// terminal that does not perform Arabic shaping itself.
func Visual(text string) string {
	return Display(Shape(text))
}

func hasRTL(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
