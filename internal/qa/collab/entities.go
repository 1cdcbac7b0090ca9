package collab

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	errx "github.com/covenant-qa/server/internal/core/error"
	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// LLMEntityExtractor extracts entities from a question with the extraction
// chat model. It is best effort: unparseable model output degrades to zero
// entities rather than an error, so the pipeline falls back to its
// placeholder entity instead of refusing the question.
type LLMEntityExtractor struct {
	chatModel  einomodel.BaseChatModel
	categories []string
}

func NewLLMEntityExtractor(chatModel einomodel.BaseChatModel, categories []string) *LLMEntityExtractor {
	return &LLMEntityExtractor{chatModel: chatModel, categories: categories}
}

func (e *LLMEntityExtractor) Extract(ctx context.Context, text string) ([]model.Entity, error) {
	systemPrompt, err := RenderExtractionSystem(ctx, e.categories)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(text),
	}

	result, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Msg("Extraction model call failed")
		return nil, errx.WrapCollaborator(err)
	}
	if result == nil || result.Content == "" {
		return []model.Entity{}, nil
	}

	payload, err := decodeEntityPayload(result.Content)
	if err != nil {
		logx.Warn().
			Err(err).
			Int("content_len", len(result.Content)).
			Msg("Extraction output was not valid JSON - treating as zero entities")
		return []model.Entity{}, nil
	}

	entities := make([]model.Entity, 0, len(payload))
	for _, p := range payload {
		entities = append(entities, model.Entity{
			Text:       p.Text,
			Type:       p.Type,
			Confidence: p.Confidence,
		})
	}
	return entities, nil
}
