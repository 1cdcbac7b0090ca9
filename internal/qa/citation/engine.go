// Package citation locates and scores the exact source excerpts that
// support a generated answer. The engine is a pure function library: it
// performs no I/O, keeps no mutable state, and is safe to call concurrently
// on disjoint inputs.
package citation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/covenant-qa/server/internal/qa/model"
)

// ellipsisMarker is appended to excerpts truncated at the length limit.
const ellipsisMarker = "..."

// windowSentences is the number of consecutive sentences scored together.
const windowSentences = 3

// Params carries the engine's scoring constants. The query/answer weighting
// and the minimum score cutoff are inherited behaviour and kept configurable
// rather than hardcoded.
type Params struct {
	QueryWeight    float64
	AnswerWeight   float64
	MinScore       float64
	MaxExcerpts    int
	ExcerptLength  int
	ContextWindow  int
	MaxPerDocument int
}

// DefaultParams returns the stock configuration.
func DefaultParams() Params {
	return Params{
		QueryWeight:    0.6,
		AnswerWeight:   0.4,
		MinScore:       0.1,
		MaxExcerpts:    3,
		ExcerptLength:  200,
		ContextWindow:  50,
		MaxPerDocument: 3,
	}
}

// FromConfig maps the envconfig citation section onto engine parameters,
// falling back to defaults for unset or non-positive values.
func FromConfig(cfg model.CitationConfig) Params {
	p := DefaultParams()
	if cfg.QueryWeight > 0 {
		p.QueryWeight = cfg.QueryWeight
	}
	if cfg.AnswerWeight > 0 {
		p.AnswerWeight = cfg.AnswerWeight
	}
	if cfg.MinScore > 0 {
		p.MinScore = cfg.MinScore
	}
	if cfg.MaxExcerpts > 0 {
		p.MaxExcerpts = cfg.MaxExcerpts
	}
	if cfg.ExcerptLength > 0 {
		p.ExcerptLength = cfg.ExcerptLength
	}
	if cfg.ContextWindow > 0 {
		p.ContextWindow = cfg.ContextWindow
	}
	if cfg.MaxPerDocument > 0 {
		p.MaxPerDocument = cfg.MaxPerDocument
	}
	return p
}

// Engine finds and scores supporting excerpts.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// scoredExcerpt pairs an excerpt with its window score for ranking.
type scoredExcerpt struct {
	text  string
	score float64
}

// FindRelevantExcerpts returns the best excerpts of content supporting the
// query and answer, ranked by score descending. Ties keep original sentence
// order. Absence of matches yields an empty slice, never an error.
func (e *Engine) FindRelevantExcerpts(content, query, answer string) []string {
	ranked := e.rankExcerpts(content, keyTerms(query), keyTerms(answer))
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.text)
	}
	return out
}

// rankExcerpts slides a window of three consecutive sentences across the
// content, truncates each window to the excerpt length, and scores it by
// weighted query/answer term overlap. Windows at or below the minimum score
// are discarded; the rest come back sorted by score descending (stable).
func (e *Engine) rankExcerpts(content string, queryTerms, answerTerms []string) []scoredExcerpt {
	sents := sentenceSpans(content)
	if len(sents) == 0 {
		return nil
	}

	windows := len(sents) - windowSentences + 1
	if windows < 1 {
		windows = 1
	}

	var ranked []scoredExcerpt
	for i := 0; i < windows; i++ {
		last := i + windowSentences - 1
		if last >= len(sents) {
			last = len(sents) - 1
		}
		text := strings.TrimSpace(content[sents[i].start:sents[last].end])
		text = e.truncate(text)

		score := e.scoreText(strings.ToLower(text), queryTerms, answerTerms)
		if score <= e.params.MinScore {
			continue
		}
		ranked = append(ranked, scoredExcerpt{text: text, score: score})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	if len(ranked) > e.params.MaxExcerpts {
		ranked = ranked[:e.params.MaxExcerpts]
	}
	return ranked
}

// truncate cuts text at the last whitespace boundary before the excerpt
// length limit and appends the ellipsis marker. Text without any whitespace
// before the limit is cut hard.
func (e *Engine) truncate(text string) string {
	limit := e.params.ExcerptLength
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + ellipsisMarker
}

// scoreText computes the weighted term-overlap score for lower-cased text.
// A term matches when the text contains it as a substring. Empty term sets
// contribute zero to their component, so the result is always in [0,1] for
// weights summing to one.
func (e *Engine) scoreText(textLower string, queryTerms, answerTerms []string) float64 {
	return e.params.QueryWeight*overlap(textLower, queryTerms) +
		e.params.AnswerWeight*overlap(textLower, answerTerms)
}

func overlap(textLower string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, t := range terms {
		if strings.Contains(textLower, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// NewCitation builds a citation for the given document slice, attaching the
// surrounding context clamped to the document bounds and trimmed.
func (e *Engine) NewCitation(doc model.Document, excerpt string, start, end int, score float64) model.Citation {
	before := start - e.params.ContextWindow
	if before < 0 {
		before = 0
	}
	after := end + e.params.ContextWindow
	if after > len(doc.Content) {
		after = len(doc.Content)
	}
	return model.Citation{
		DocumentID:     doc.ID,
		DocumentTitle:  doc.Title,
		Category:       doc.Category,
		Excerpt:        excerpt,
		StartPosition:  start,
		EndPosition:    end,
		RelevanceScore: score,
		ContextBefore:  strings.TrimSpace(doc.Content[before:start]),
		ContextAfter:   strings.TrimSpace(doc.Content[end:after]),
	}
}

// ExtractCitations finds supporting excerpts in every document and turns
// them into position-exact citations. For each excerpt the first
// case-insensitive occurrence in the document wins; that tie-break is part
// of the contract, not a heuristic. Excerpts with no occurrence are skipped
// rather than raised: they always originate from the same content, so a
// miss is defensive only. The returned list is sorted by relevance score
// descending (stable) and capped per document.
func (e *Engine) ExtractCitations(query, answer string, docs []model.Document) []model.Citation {
	queryTerms := keyTerms(query)
	answerTerms := keyTerms(answer)

	citations := make([]model.Citation, 0, len(docs)*e.params.MaxPerDocument)
	for _, doc := range docs {
		perDoc := 0
		for _, excerpt := range e.FindRelevantExcerpts(doc.Content, query, answer) {
			if perDoc >= e.params.MaxPerDocument {
				break
			}
			needle := strings.TrimSpace(strings.TrimSuffix(excerpt, ellipsisMarker))
			if needle == "" {
				continue
			}
			idx := strings.Index(strings.ToLower(doc.Content), strings.ToLower(needle))
			if idx < 0 || idx+len(needle) > len(doc.Content) {
				continue
			}
			start, end := idx, idx+len(needle)
			exact := doc.Content[start:end]
			score := e.scoreText(strings.ToLower(exact), queryTerms, answerTerms)
			citations = append(citations, e.NewCitation(doc, exact, start, end, score))
			perDoc++
		}
	}

	sort.SliceStable(citations, func(a, b int) bool {
		return citations[a].RelevanceScore > citations[b].RelevanceScore
	})
	return citations
}
