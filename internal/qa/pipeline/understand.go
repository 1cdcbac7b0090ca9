package pipeline

import (
	"context"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// placeholderEntityType is the documented fallback: when the extraction
// collaborator returns nothing usable, the question itself becomes a single
// low-confidence "topic" entity so later stages never block on missing
// entities.
const (
	placeholderEntityType       = "topic"
	placeholderEntityConfidence = 0.2
	placeholderEntityMaxLen     = 80
)

// UnderstandStage extracts entities from the user's question. The
// extraction collaborator is best effort: an empty or structurally invalid
// result falls back to the placeholder entity, and only an outright
// collaborator failure asks the user to rephrase.
type UnderstandStage struct {
	extractor EntityExtractor
}

func NewUnderstandStage(extractor EntityExtractor) *UnderstandStage {
	return &UnderstandStage{extractor: extractor}
}

func (s *UnderstandStage) ID() StageID {
	return StageUnderstand
}

func (s *UnderstandStage) Execute(ctx context.Context, state model.RequestState) (model.RequestState, Outcome) {
	entities, err := s.extractor.Extract(ctx, state.InputText)
	if err != nil {
		logx.Warn().
			Err(err).
			Str("session_id", state.SessionID).
			Str("stage", s.ID().String()).
			Msg("Entity extraction failed")
		return state.WithClarification(msgRephrase), OutcomeNeedsClarification
	}

	entities = sanitizeEntities(entities)
	if len(entities) == 0 {
		logx.Debug().
			Str("session_id", state.SessionID).
			Msg("No entities extracted - using placeholder")
		entities = []model.Entity{placeholderEntity(state.InputText)}
	}

	return state.WithEntities(entities), OutcomeContinue
}

// sanitizeEntities drops structurally invalid entries (empty text,
// confidence outside [0,1]) so a half-broken collaborator result degrades
// to the placeholder instead of polluting the state.
func sanitizeEntities(entities []model.Entity) []model.Entity {
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Text == "" || e.Confidence < 0 || e.Confidence > 1 {
			continue
		}
		if e.Type == "" {
			e.Type = placeholderEntityType
		}
		out = append(out, e)
	}
	return out
}

func placeholderEntity(input string) model.Entity {
	text := input
	if len(text) > placeholderEntityMaxLen {
		text = text[:placeholderEntityMaxLen]
	}
	return model.Entity{
		Text:       text,
		Type:       placeholderEntityType,
		Confidence: placeholderEntityConfidence,
	}
}
