package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/covenant-qa/server/internal/core"
	"github.com/covenant-qa/server/internal/qa/citation"
	"github.com/covenant-qa/server/internal/qa/collab"
	"github.com/covenant-qa/server/internal/qa/history"
	"github.com/covenant-qa/server/internal/qa/index"
	"github.com/covenant-qa/server/internal/qa/model"
	"github.com/covenant-qa/server/internal/qa/pipeline"
	"github.com/covenant-qa/server/internal/server"
	logx "github.com/covenant-qa/server/pkg/logger"
	pkgredis "github.com/covenant-qa/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Pipeline configs
	Extraction   model.ExtractionModelConfig
	Generation   model.GenerationModelConfig
	Conversation model.ConversationConfig
	Retrieval    model.RetrievalConfig
	Citation     model.CitationConfig
	Server       model.ServerConfig
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}
	conversationRepo := history.NewRedisConversationRepository(rdb, ttl)

	// Document index and corpus ingest
	idx, err := index.NewSQLiteIndex(cfg.Retrieval.IndexPath, cfg.Retrieval.TopK)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to open document index")
	}
	defer idx.Close()

	indexed, err := index.LoadCorpus(ctx, idx, cfg.Retrieval.CorpusDir)
	if err != nil {
		logx.Fatal().Err(err).Str("dir", cfg.Retrieval.CorpusDir).Msg("Failed to load corpus")
	}
	logx.Info().Int("documents", indexed).Str("dir", cfg.Retrieval.CorpusDir).Msg("Corpus indexed")

	if cfg.Retrieval.WatchCorpus {
		watcher, err := index.NewCorpusWatcher(idx, cfg.Retrieval.CorpusDir)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to start corpus watcher")
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	// LLM collaborators
	chatModels, err := collab.NewChatModels(ctx, collab.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Extraction: &cfg.Extraction,
		Generation: &cfg.Generation,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat models")
	}

	categories := model.ParseCategories(cfg.Retrieval.AllowedCategories)
	extractor := collab.NewLLMEntityExtractor(chatModels.Extraction, categories)
	generator := collab.NewLLMAnswerGenerator(chatModels.Generation, conversationRepo, cfg.Conversation.MaxTurns)
	engine := citation.NewEngine(citation.FromConfig(cfg.Citation))

	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewUnderstandStage(extractor),
		pipeline.NewRetrieveStage(idx, categories),
		pipeline.NewGenerateStage(generator, engine),
		pipeline.NewFinalizeStage(),
	)

	srv := server.New(env, orchestrator, conversationRepo)
	logx.Info().Str("addr", cfg.Server.Addr).Str("environment", env.String()).Msg("Server starting")
	if err := srv.Run(cfg.Server.Addr); err != nil {
		logx.Fatal().Err(err).Msg("Server stopped")
	}
}
