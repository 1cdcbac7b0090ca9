package pipeline

import (
	"context"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// FinalizeStage assembles the outward-facing response. It is terminal and
// always reached; no path leaves the response unset.
type FinalizeStage struct{}

func NewFinalizeStage() *FinalizeStage {
	return &FinalizeStage{}
}

func (s *FinalizeStage) ID() StageID {
	return StageFinalize
}

func (s *FinalizeStage) Execute(ctx context.Context, state model.RequestState) (model.RequestState, Outcome) {
	resp := &model.QueryResponse{
		SessionID:           state.SessionID,
		ExtractedEntities:   emptyIfNil(state.ExtractedEntities),
		RelevantDocuments:   documentSummaries(state.EvidenceDocuments),
		Citations:           []model.Citation{},
		ConfidenceLevel:     model.ConfidenceLow,
		FollowUpSuggestions: []string{},
	}

	switch {
	case state.NeedsClarification:
		resp.Response = state.ClarificationText
		if resp.Response == "" {
			resp.Response = msgApology
		}
	case state.GeneratedAnswer != nil:
		answer := state.GeneratedAnswer
		resp.Response = answer.Text
		resp.Citations = emptyIfNil(answer.Citations)
		resp.ConfidenceLevel = answer.Confidence
		resp.HasCompleteAnswer = answer.IsComplete
		resp.FollowUpSuggestions = emptyIfNil(answer.FollowUps)
	default:
		// A request that reaches finalization without an answer or a
		// clarification is a routing defect; still answer the user.
		logx.Error().
			Str("session_id", state.SessionID).
			Msg("Finalization reached with neither answer nor clarification")
		resp.Response = msgApology
	}

	return state.WithResponse(resp), OutcomeDone
}

func documentSummaries(docs []model.Document) []model.DocumentSummary {
	summaries := make([]model.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, d.Summary())
	}
	return summaries
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
