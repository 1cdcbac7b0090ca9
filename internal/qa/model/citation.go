package model

// Citation is a position-exact quotation from a source document offered as
// evidence for a generated answer.
//
// Invariants, for every citation ever produced:
//   - 0 <= StartPosition < EndPosition <= len(document.Content)
//   - Excerpt == document.Content[StartPosition:EndPosition]
//   - RelevanceScore is in [0,1] and deterministic for identical inputs
type Citation struct {
	DocumentID     string  `json:"document_id"`
	DocumentTitle  string  `json:"document_title"`
	Category       string  `json:"category"`
	Excerpt        string  `json:"excerpt"`
	StartPosition  int     `json:"start_position"`
	EndPosition    int     `json:"end_position"`
	RelevanceScore float64 `json:"relevance_score"`
	ContextBefore  string  `json:"context_before"`
	ContextAfter   string  `json:"context_after"`
}
