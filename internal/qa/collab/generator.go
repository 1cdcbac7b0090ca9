package collab

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	errx "github.com/covenant-qa/server/internal/core/error"
	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// LLMAnswerGenerator produces a grounded answer draft with the generation
// chat model. Conversation history is pulled from the repository for
// follow-up questions ("what about Tier 2?") and both sides of the exchange
// are persisted back. History storage is best effort: a Redis outage
// degrades to a single-turn answer, it does not block the response.
type LLMAnswerGenerator struct {
	chatModel einomodel.BaseChatModel
	history   model.ConversationRepository
	maxTurns  int
}

func NewLLMAnswerGenerator(chatModel einomodel.BaseChatModel, history model.ConversationRepository, maxTurns int) *LLMAnswerGenerator {
	return &LLMAnswerGenerator{chatModel: chatModel, history: history, maxTurns: maxTurns}
}

func (g *LLMAnswerGenerator) Generate(ctx context.Context, sessionID, query string, docs []model.Document) (*model.AnswerDraft, error) {
	systemPrompt, err := RenderGenerationSystem(ctx, buildDocumentContext(docs))
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
	messages = append(messages, g.historyMessages(ctx, sessionID)...)
	messages = append(messages, schema.UserMessage(query))

	result, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("Generation model call failed")
		return nil, errx.WrapCollaborator(err)
	}
	if result == nil || result.Content == "" {
		return nil, errx.WrapMalformed(fmt.Errorf("empty generation output"))
	}

	draft := decodeDraft(result.Content)
	g.saveTurn(ctx, sessionID, model.RoleUser, query)
	g.saveTurn(ctx, sessionID, model.RoleAssistant, draft.Text)
	return draft, nil
}

// decodeDraft parses the structured answer payload. A model that ignored the
// JSON instruction and answered in prose still yields a usable draft.
func decodeDraft(content string) *model.AnswerDraft {
	payload, err := decodeAnswerPayload(content)
	if err != nil || payload.Text == "" {
		logx.Warn().
			Int("content_len", len(content)).
			Msg("Generation output was not valid JSON - using raw text")
		return &model.AnswerDraft{Text: stripCodeFences(content), IsComplete: true}
	}
	return &model.AnswerDraft{
		Text:       payload.Text,
		IsComplete: payload.IsComplete,
		FollowUps:  payload.FollowUps,
	}
}

// historyMessages loads the recent conversation tail as chat turns. The
// current question is not in it yet; the caller appends it explicitly.
func (g *LLMAnswerGenerator) historyMessages(ctx context.Context, sessionID string) []*schema.Message {
	history, err := g.history.LoadHistory(ctx, sessionID)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("Loading conversation history failed")
		return nil
	}

	recent := history.Tail(g.maxTurns)
	messages := make([]*schema.Message, 0, len(recent))
	for _, msg := range recent {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case model.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}

func (g *LLMAnswerGenerator) saveTurn(ctx context.Context, sessionID, role, content string) {
	if content == "" {
		return
	}
	err := g.history.AddMessage(ctx, sessionID, model.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Str("role", role).Msg("Persisting conversation turn failed")
	}
}

// buildDocumentContext renders the evidence documents for the system prompt,
// one block per document in retrieval order.
func buildDocumentContext(docs []model.Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Document %d] %s (category: %s)\n", i+1, d.Title, d.Category)
		b.WriteString(d.Content)
	}
	return b.String()
}
