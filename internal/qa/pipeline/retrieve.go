package pipeline

import (
	"context"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// RetrieveStage asks the search collaborator for evidence documents within
// the configured category allow-list. Zero results short-circuit the
// pipeline: answer generation is never invoked without evidence.
type RetrieveStage struct {
	searcher   Searcher
	categories []string
}

func NewRetrieveStage(searcher Searcher, categories []string) *RetrieveStage {
	return &RetrieveStage{searcher: searcher, categories: categories}
}

func (s *RetrieveStage) ID() StageID {
	return StageRetrieve
}

func (s *RetrieveStage) Execute(ctx context.Context, state model.RequestState) (model.RequestState, Outcome) {
	docs, err := s.searcher.Search(ctx, state.InputText, state.TenantID, s.categories)
	if err != nil {
		logx.Warn().
			Err(err).
			Str("session_id", state.SessionID).
			Str("stage", s.ID().String()).
			Msg("Evidence retrieval failed")
		return state.WithClarification(msgRetry), OutcomeNeedsClarification
	}

	if len(docs) == 0 {
		logx.Debug().
			Str("session_id", state.SessionID).
			Str("tenant_id", state.TenantID).
			Msg("No evidence documents found")
		return state.WithClarification(msgNoEvidence), OutcomeNeedsClarification
	}

	logx.Debug().
		Str("session_id", state.SessionID).
		Int("documents", len(docs)).
		Msg("Evidence retrieved")
	return state.WithDocuments(docs), OutcomeContinue
}
