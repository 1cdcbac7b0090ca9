// Package collab implements the pipeline collaborators: LLM-backed entity
// extraction and answer generation on top of Gemini chat models.
package collab

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey     string
	BaseURL    string
	Extraction *model.ExtractionModelConfig
	Generation *model.GenerationModelConfig
}

// ChatModels holds both extraction and generation chat models
type ChatModels struct {
	Extraction          *gemini.ChatModel
	Generation          *gemini.ChatModel
	ExtractionModelName string
	GenerationModelName string
}

// NewChatModels creates both extraction and generation chat models with the
// given configuration. Both share one Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	extractionModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Extraction.Model,
		Temperature: &config.Extraction.Temperature,
		MaxTokens:   &config.Extraction.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extraction model")
		return nil, fmt.Errorf("error creating extraction model: %w", err)
	}

	generationModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Generation.Model,
		Temperature: &config.Generation.Temperature,
		MaxTokens:   &config.Generation.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating generation model")
		return nil, fmt.Errorf("error creating generation model: %w", err)
	}

	return &ChatModels{
		Extraction:          extractionModel,
		Generation:          generationModel,
		ExtractionModelName: config.Extraction.Model,
		GenerationModelName: config.Generation.Model,
	}, nil
}
