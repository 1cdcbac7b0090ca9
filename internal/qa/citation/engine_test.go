package citation

import (
	"strings"
	"testing"

	"github.com/covenant-qa/server/internal/qa/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const partnershipContent = "Tier 1 (Strategic Partners): 30% of net revenue, paid monthly. " +
	"Tier 2 (Certified Partners): 20% of net revenue, paid quarterly. " +
	"Tier 3 (Referral Partners): 10% of net revenue, paid quarterly. " +
	"All payouts require a signed partnership agreement on file. " +
	"Partners must submit invoices within thirty days of quarter end."

func testDoc(content string) model.Document {
	return model.Document{
		ID:       "doc-001",
		Title:    "Partner Revenue Sharing Agreement",
		Content:  content,
		Category: "partnership",
		TenantID: "tenant-a",
		Score:    0.92,
	}
}

func TestFindRelevantExcerptsScenario(t *testing.T) {
	e := NewEngine(DefaultParams())

	excerpts := e.FindRelevantExcerpts(
		partnershipContent,
		"revenue sharing percentages",
		"Tier 1 partners receive 30% of net revenue",
	)

	require.NotEmpty(t, excerpts)
	assert.Contains(t, excerpts[0], "30% of net revenue")
}

func TestFindRelevantExcerptsNoMatch(t *testing.T) {
	e := NewEngine(DefaultParams())

	excerpts := e.FindRelevantExcerpts(
		"Partners must follow compliance clauses",
		"revenue sharing requirements",
		"",
	)

	assert.Empty(t, excerpts)
}

func TestFindRelevantExcerptsEmptyContent(t *testing.T) {
	e := NewEngine(DefaultParams())

	assert.Empty(t, e.FindRelevantExcerpts("", "revenue sharing", "answer"))
}

func TestFindRelevantExcerptsCap(t *testing.T) {
	e := NewEngine(DefaultParams())

	// Every sentence mentions revenue, so every window scores above the
	// cutoff; the cap must still hold.
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("The partner revenue clause applies to every invoice. ")
	}

	excerpts := e.FindRelevantExcerpts(b.String(), "partner revenue clause", "revenue clause applies")
	assert.LessOrEqual(t, len(excerpts), DefaultParams().MaxExcerpts)
	assert.NotEmpty(t, excerpts)
}

func TestFindRelevantExcerptsTruncation(t *testing.T) {
	p := DefaultParams()
	p.ExcerptLength = 60
	e := NewEngine(p)

	long := "The quarterly revenue distribution schedule covers strategic partners and certified partners alike without exception. " +
		"Additional clauses apply. Nothing else matters here."
	excerpts := e.FindRelevantExcerpts(long, "revenue distribution schedule", "quarterly revenue distribution")

	require.NotEmpty(t, excerpts)
	for _, ex := range excerpts {
		assert.LessOrEqual(t, len(ex), p.ExcerptLength+len("..."))
		if len(ex) > p.ExcerptLength {
			assert.True(t, strings.HasSuffix(ex, "..."))
		}
	}
}

func TestExtractCitationsOffsetSoundness(t *testing.T) {
	e := NewEngine(DefaultParams())
	doc := testDoc(partnershipContent)

	citations := e.ExtractCitations(
		"revenue sharing percentages",
		"Tier 1 partners receive 30% of net revenue",
		[]model.Document{doc},
	)

	require.NotEmpty(t, citations)
	for _, c := range citations {
		assert.GreaterOrEqual(t, c.StartPosition, 0)
		assert.Less(t, c.StartPosition, c.EndPosition)
		assert.LessOrEqual(t, c.EndPosition, len(doc.Content))
		assert.Equal(t, doc.Content[c.StartPosition:c.EndPosition], c.Excerpt)
	}
}

func TestExtractCitationsScoreBounds(t *testing.T) {
	e := NewEngine(DefaultParams())
	doc := testDoc(partnershipContent)

	citations := e.ExtractCitations(
		"revenue sharing percentages",
		"Tier 1 partners receive 30% of net revenue",
		[]model.Document{doc},
	)

	require.NotEmpty(t, citations)
	for _, c := range citations {
		assert.GreaterOrEqual(t, c.RelevanceScore, 0.0)
		assert.LessOrEqual(t, c.RelevanceScore, 1.0)
	}
}

func TestExtractCitationsScenario(t *testing.T) {
	e := NewEngine(DefaultParams())
	doc := testDoc("Tier 1 (Strategic Partners): 30% of net revenue, paid monthly")

	citations := e.ExtractCitations(
		"revenue sharing percentages",
		"Tier 1 partners receive 30% of net revenue",
		[]model.Document{doc},
	)

	require.NotEmpty(t, citations)
	found := false
	for _, c := range citations {
		if strings.Contains(c.Excerpt, "30% of net revenue") && c.RelevanceScore > 0.1 {
			found = true
		}
	}
	assert.True(t, found, "expected a citation quoting the revenue clause above the cutoff")
}

func TestExtractCitationsDeterminism(t *testing.T) {
	e := NewEngine(DefaultParams())
	docs := []model.Document{
		testDoc(partnershipContent),
		{
			ID:       "doc-002",
			Title:    "Compliance Addendum",
			Content:  "Revenue reports are audited annually. Partners must retain revenue records for seven years. Late submissions void revenue sharing for the period.",
			Category: "compliance",
		},
	}

	first := e.ExtractCitations("revenue sharing percentages", "Tier 1 partners receive 30% of net revenue", docs)
	second := e.ExtractCitations("revenue sharing percentages", "Tier 1 partners receive 30% of net revenue", docs)

	assert.Equal(t, first, second)
}

func TestExtractCitationsPerDocumentCap(t *testing.T) {
	e := NewEngine(DefaultParams())
	doc := testDoc(partnershipContent)

	citations := e.ExtractCitations(
		"revenue sharing percentages",
		"partners receive a share of net revenue",
		[]model.Document{doc},
	)

	perDoc := map[string]int{}
	for _, c := range citations {
		perDoc[c.DocumentID]++
	}
	for id, n := range perDoc {
		assert.LessOrEqual(t, n, DefaultParams().MaxPerDocument, "document %s exceeds cap", id)
	}
}

func TestExtractCitationsSortedByScore(t *testing.T) {
	e := NewEngine(DefaultParams())
	docs := []model.Document{
		testDoc(partnershipContent),
		{
			ID:       "doc-003",
			Title:    "Unrelated Facilities Policy",
			Content:  "Badge access ends at the termination of employment. Visitors sign in at the lobby desk.",
			Category: "compliance",
		},
	}

	citations := e.ExtractCitations("revenue sharing percentages", "Tier 1 partners receive 30% of net revenue", docs)
	for i := 1; i < len(citations); i++ {
		assert.GreaterOrEqual(t, citations[i-1].RelevanceScore, citations[i].RelevanceScore)
	}
}

func TestNewCitationContexts(t *testing.T) {
	e := NewEngine(DefaultParams())
	doc := testDoc(partnershipContent)

	start := strings.Index(doc.Content, "Tier 2")
	end := start + len("Tier 2 (Certified Partners): 20% of net revenue")
	require.Positive(t, start)

	c := e.NewCitation(doc, doc.Content[start:end], start, end, 0.5)

	assert.NotEmpty(t, c.ContextBefore)
	assert.NotEmpty(t, c.ContextAfter)
	assert.LessOrEqual(t, len(c.ContextBefore), DefaultParams().ContextWindow)
	assert.LessOrEqual(t, len(c.ContextAfter), DefaultParams().ContextWindow)
	assert.Equal(t, strings.TrimSpace(c.ContextBefore), c.ContextBefore)
	assert.Equal(t, strings.TrimSpace(c.ContextAfter), c.ContextAfter)
}

func TestNewCitationClampsAtDocumentEdges(t *testing.T) {
	e := NewEngine(DefaultParams())
	doc := testDoc("Short agreement text.")

	c := e.NewCitation(doc, doc.Content, 0, len(doc.Content), 0.3)

	assert.Empty(t, c.ContextBefore)
	assert.Empty(t, c.ContextAfter)
}
