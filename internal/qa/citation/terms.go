package citation

import (
	"strings"
	"unicode"
)

// minTermLength is the shortest token considered a key term; anything at or
// below this length is discarded before scoring.
const minTermLength = 3

// stopwords is the fixed English stop-word set filtered out of key terms.
// Tokens of three characters or fewer are dropped regardless, so only the
// longer function words need to appear here.
var stopwords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "have": {}, "will": {}, "your": {},
	"from": {}, "they": {}, "been": {}, "much": {}, "some": {}, "what": {},
	"when": {}, "which": {}, "their": {}, "there": {}, "about": {}, "would": {},
	"these": {}, "those": {}, "other": {}, "into": {}, "more": {}, "must": {},
	"shall": {}, "such": {}, "than": {}, "them": {}, "then": {}, "were": {},
	"does": {}, "each": {}, "also": {}, "where": {}, "while": {}, "should": {},
	"could": {}, "being": {}, "after": {}, "before": {}, "between": {},
	"under": {}, "over": {}, "only": {}, "very": {}, "just": {}, "both": {},
	"during": {}, "through": {}, "against": {}, "because": {}, "until": {},
	"above": {}, "below": {}, "within": {}, "without": {}, "upon": {},
	"here": {}, "same": {}, "please": {},
}

// keyTerms tokenizes text on whitespace and punctuation, lower-cases it,
// drops short tokens and stop words, and deduplicates while preserving the
// order of first appearance.
func keyTerms(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) <= minTermLength {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return terms
}

// span marks a sentence as a half-open byte range into the original content.
// Keeping ranges instead of copies lets excerpts stay exact substrings of
// the source, which the citation offset invariant depends on.
type span struct {
	start int
	end   int
}

// sentenceSpans splits content into sentences delimited by '.', '!' or '?'.
// The delimiter stays attached to its sentence; whitespace-only fragments
// are dropped.
func sentenceSpans(content string) []span {
	var spans []span
	start := 0
	for i, r := range content {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if s, ok := trimSpan(content, start, i+1); ok {
			spans = append(spans, s)
		}
		start = i + 1
	}
	if s, ok := trimSpan(content, start, len(content)); ok {
		spans = append(spans, s)
	}
	return spans
}

// trimSpan shrinks [start,end) to exclude surrounding whitespace and reports
// whether anything remains.
func trimSpan(content string, start, end int) (span, bool) {
	for start < end && isSpaceByte(content[start]) {
		start++
	}
	for end > start && isSpaceByte(content[end-1]) {
		end--
	}
	if start >= end {
		return span{}, false
	}
	return span{start: start, end: end}, true
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
