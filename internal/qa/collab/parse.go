package collab

import (
	"encoding/json"
	"strings"
)

// stripCodeFences removes a leading/trailing markdown code fence the model
// sometimes wraps its JSON in, despite the prompt saying not to.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type entityPayload struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

func decodeEntityPayload(content string) ([]entityPayload, error) {
	var out []entityPayload
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

type answerPayload struct {
	Text       string   `json:"text"`
	IsComplete bool     `json:"is_complete"`
	FollowUps  []string `json:"follow_ups"`
}

func decodeAnswerPayload(content string) (*answerPayload, error) {
	var out answerPayload
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
