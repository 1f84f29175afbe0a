package llm

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minTokenLen = 4
	maxKeywords = 8
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

var stopWords = map[string]struct{}{
	"and": {}, "the": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "their": {}, "they": {}, "have": {}, "will": {},
	"which": {}, "your": {}, "about": {}, "into": {}, "over": {},
	"were": {}, "been": {}, "also": {}, "more": {}, "than": {},
	"when": {}, "where": {}, "what": {}, "while": {}, "would": {},
	"years": {}, "year": {}, "work": {}, "working": {}, "worked": {},
	"using": {}, "used": {}, "various": {}, "strong": {}, "skills": {},
	"experience": {}, "experienced": {},
}

// Keywords derives search keywords from free-form profile text without any
// network dependency. Tokens are lower-cased, stripped of punctuation,
// filtered against the stop-word set and a minimum length (all-caps acronyms
// like "AWS" are kept regardless of length), then ranked by frequency with
// ties broken by first occurrence. At most maxKeywords survive. The result is
// empty, never an error, when nothing qualifies.
func Keywords(text string) []string {
	cleaned := nonAlnum.ReplaceAllString(text, " ")

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, token := range strings.Fields(cleaned) {
		lower := strings.ToLower(token)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		if utf8.RuneCountInString(lower) < minTokenLen && !isAcronym(token) {
			continue
		}
		if counts[lower] == 0 {
			order = append(order, lower)
		}
		counts[lower]++
	}

	// Stable sort keeps first-occurrence order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	return order
}

// isAcronym reports whether the original token looks like an all-caps
// abbreviation (AWS, NIH, ML6). Such tokens carry weight despite being short.
func isAcronym(token string) bool {
	if utf8.RuneCountInString(token) < 2 {
		return false
	}

	hasLetter := false
	for _, r := range token {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r):
		default:
			return false
		}
	}

	return hasLetter
}
