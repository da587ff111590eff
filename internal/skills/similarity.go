package skills

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
)

// Similarity scores two normalized strings in [0, 1] as the larger of
// normalized edit similarity and token-set Jaccard overlap.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	longest := max(len([]rune(a)), len([]rune(b)))
	edit := 1.0 - float64(edlib.LevenshteinDistance(a, b))/float64(longest)

	ta, tb := tokens(a), tokens(b)
	if ta == "" || tb == "" {
		return edit
	}
	// whitespace splitting over de-duplicated tokens gives set semantics
	jaccard := float64(edlib.JaccardSimilarity(ta, tb, 0))
	return max(edit, jaccard)
}

// tokens splits on anything but letters, digits, '+' and '#' so "c++" and "c#"
// survive, and rejoins the distinct tokens with single spaces
func tokens(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '+' && r != '#'
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}
