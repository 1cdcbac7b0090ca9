package model

// ConfidenceLevel is the coarse quality label attached to a generated answer.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceForEvidence maps the evidence document count to a confidence
// level: two or more documents is high, exactly one is medium, zero is low.
// The zero case should not be reachable behind evidence retrieval, but the
// rule is total.
func ConfidenceForEvidence(docs int) ConfidenceLevel {
	switch {
	case docs >= 2:
		return ConfidenceHigh
	case docs == 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Entity is one extracted entity from the user's question.
type Entity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// AnswerDraft is the raw answer-generation collaborator output before the
// pipeline attaches confidence, source titles, and citations.
type AnswerDraft struct {
	Text       string   `json:"text"`
	IsComplete bool     `json:"is_complete"`
	FollowUps  []string `json:"follow_ups"`
}

// GeneratedAnswer is the answer-generation result enriched with citations.
type GeneratedAnswer struct {
	Text         string          `json:"text"`
	Confidence   ConfidenceLevel `json:"confidence"`
	SourceTitles []string        `json:"source_titles"`
	Citations    []Citation      `json:"citations"`
	IsComplete   bool            `json:"is_complete"`
	FollowUps    []string        `json:"follow_ups"`
}
