package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyTermsDropsShortAndStopWords(t *testing.T) {
	terms := keyTerms("What are the revenue sharing terms for our top tier?")

	assert.Contains(t, terms, "revenue")
	assert.Contains(t, terms, "sharing")
	assert.Contains(t, terms, "terms")
	assert.NotContains(t, terms, "what") // stop word
	assert.NotContains(t, terms, "the")  // too short
	assert.NotContains(t, terms, "for")  // too short
}

func TestKeyTermsDeduplicatesInOrder(t *testing.T) {
	terms := keyTerms("Revenue revenue REVENUE sharing revenue")

	assert.Equal(t, []string{"revenue", "sharing"}, terms)
}

func TestKeyTermsEmpty(t *testing.T) {
	assert.Empty(t, keyTerms(""))
	assert.Empty(t, keyTerms("a an the for and"))
}

func TestSentenceSpansDelimiters(t *testing.T) {
	content := "First clause applies. Second clause is binding! Third clause? Trailing fragment"
	spans := sentenceSpans(content)

	assert.Len(t, spans, 4)
	assert.Equal(t, "First clause applies.", content[spans[0].start:spans[0].end])
	assert.Equal(t, "Second clause is binding!", content[spans[1].start:spans[1].end])
	assert.Equal(t, "Third clause?", content[spans[2].start:spans[2].end])
	assert.Equal(t, "Trailing fragment", content[spans[3].start:spans[3].end])
}

func TestSentenceSpansSkipsEmptyFragments(t *testing.T) {
	content := "One.   Two. \n"
	spans := sentenceSpans(content)

	texts := make([]string, 0, len(spans))
	for _, s := range spans {
		texts = append(texts, content[s.start:s.end])
	}
	assert.Equal(t, []string{"One.", "Two."}, texts)
}

func TestSentenceSpansEmpty(t *testing.T) {
	assert.Empty(t, sentenceSpans(""))
	assert.Empty(t, sentenceSpans("   \n\t  "))
}
