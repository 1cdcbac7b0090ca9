package collab

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/extraction_prompt.txt
var extractionSystemPrompt string

//go:embed template/generation_prompt.txt
var generationSystemPrompt string

// RenderExtractionSystem renders the extraction system prompt via the Eino
// prompt component so prompt callbacks fire.
func RenderExtractionSystem(ctx context.Context, categories []string) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(extractionSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Categories": strings.Join(categories, ", "),
	})
	if err != nil {
		return "", fmt.Errorf("extraction prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("extraction prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// RenderGenerationSystem renders the grounded-answering system prompt with
// the evidence documents inlined.
func RenderGenerationSystem(ctx context.Context, documentContext string) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(generationSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"DocumentContext": documentContext,
	})
	if err != nil {
		return "", fmt.Errorf("generation prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("generation prompt render: empty result")
	}
	return msgs[0].Content, nil
}
