package pipeline

import (
	"context"

	"github.com/covenant-qa/server/internal/qa/citation"
	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// GenerateStage calls the answer-generation collaborator once, grades the
// result by evidence volume, and grounds it with citations from the
// citation engine. A low-confidence incomplete answer is returned to the
// user as a clarification rather than presented as fact.
type GenerateStage struct {
	generator AnswerGenerator
	engine    *citation.Engine
}

func NewGenerateStage(generator AnswerGenerator, engine *citation.Engine) *GenerateStage {
	return &GenerateStage{generator: generator, engine: engine}
}

func (s *GenerateStage) ID() StageID {
	return StageGenerate
}

func (s *GenerateStage) Execute(ctx context.Context, state model.RequestState) (model.RequestState, Outcome) {
	draft, err := s.generator.Generate(ctx, state.SessionID, state.InputText, state.EvidenceDocuments)
	if err != nil || draft == nil {
		logx.Warn().
			Err(err).
			Str("session_id", state.SessionID).
			Str("stage", s.ID().String()).
			Msg("Answer generation failed")
		return state.WithClarification(msgRetry), OutcomeNeedsClarification
	}

	confidence := model.ConfidenceForEvidence(len(state.EvidenceDocuments))
	citations := s.engine.ExtractCitations(state.InputText, draft.Text, state.EvidenceDocuments)

	answer := &model.GeneratedAnswer{
		Text:         draft.Text,
		Confidence:   confidence,
		SourceTitles: sourceTitles(state.EvidenceDocuments),
		Citations:    citations,
		IsComplete:   draft.IsComplete,
		FollowUps:    draft.FollowUps,
	}
	state = state.WithAnswer(answer)

	logx.Debug().
		Str("session_id", state.SessionID).
		Str("confidence", string(confidence)).
		Int("citations", len(citations)).
		Msg("Answer generated")

	if confidence == model.ConfidenceLow && !draft.IsComplete {
		return state.WithClarification(draft.Text + "\n\n" + msgMoreSpecific), OutcomeNeedsClarification
	}

	return state, OutcomeContinue
}

// sourceTitles collects document titles in retrieval order, deduplicated.
func sourceTitles(docs []model.Document) []string {
	seen := make(map[string]struct{}, len(docs))
	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Title == "" {
			continue
		}
		if _, dup := seen[d.Title]; dup {
			continue
		}
		seen[d.Title] = struct{}{}
		titles = append(titles, d.Title)
	}
	return titles
}
