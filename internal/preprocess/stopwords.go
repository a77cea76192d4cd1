package preprocess

// defaultStopwords contains high-frequency Arabic function words that carry
// no dialectal signal: prepositions, pronouns, demonstratives, relatives and
// copulas. Entries are canonicalized by NewNormalizer before use.
var defaultStopwords = []string{
	"في", "من", "إلى", "على", "أن", "ما", "هذا", "هذه", "ذلك", "كان",
	"يكون", "مع", "هو", "هي", "هم", "التي", "الذي", "عن", "ليس", "إذا",
}

// DefaultStopwords returns a copy of the built-in stopword list.
func DefaultStopwords() []string {
	return append([]string(nil), defaultStopwords...)
}
