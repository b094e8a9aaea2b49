package bootstrap

import (
	"context"
	"log"

	"industrial-ai-be/internal/config"
	"industrial-ai-be/internal/controller"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/internal/repository/implementation"
	"industrial-ai-be/internal/repository/memory"
	"industrial-ai-be/internal/service"
	"industrial-ai-be/pkg/embedding"
	"industrial-ai-be/pkg/llm/factory"
	"industrial-ai-be/pkg/rag/answer"
	"industrial-ai-be/pkg/rag/hybrid"
	"industrial-ai-be/pkg/rag/retriever"
	"industrial-ai-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	UsageConsumerService service.IUsageConsumerService

	// Shared facades
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIBaseURL,
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.OpenAIEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIEmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	webProvider := websearch.NewDuckDuckGoProvider("")

	// 4. Storage
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	if count, err := chunkRepo.Count(context.Background()); err != nil {
		sysLogger.Warn("bootstrap", "failed to count document chunks", map[string]interface{}{"error": err.Error()})
	} else {
		sysLogger.Info("bootstrap", "document corpus loaded", map[string]interface{}{"chunk_count": count})
	}
	sessionStore := memory.NewSessionStore(cfg.Rag.SessionWindowSize)

	// 5. Retrieval Pipeline
	localRetriever := retriever.NewPgVectorRetriever(chunkRepo)

	coordinator := hybrid.NewCoordinator(
		localRetriever,
		webProvider,
		sessionStore,
		hybrid.Config{
			TopK:                     cfg.Rag.TopK,
			MatchThreshold:           cfg.Rag.MatchThreshold,
			MinConfidenceThreshold:   cfg.Rag.MinConfidenceThreshold,
			WebSearchEnabled:         cfg.Rag.WebSearchEnabled,
			MaxWebSearchesPerSession: cfg.Rag.MaxWebSearchesPerSession,
			WebSearchMaxResults:      cfg.Rag.WebSearchMaxResults,
			WebSearchContext:         cfg.Rag.WebSearchContext,
		},
		sysLogger,
	)

	synthesizer := answer.NewSynthesizer(llmProvider, cfg.Rag.MaxContextChars, sysLogger)

	// 6. Services
	chatService := service.NewChatService(
		embeddingProvider,
		coordinator,
		synthesizer,
		sessionStore,
		pubSub,
		sysLogger,
		cfg.Rag.RecentContextSize,
		cfg.Rag.MaxWebSearchesPerSession,
	)

	usageConsumer := service.NewUsageConsumerService(pubSub, sysLogger)

	// 7. Controllers
	chatController := controller.NewChatController(chatService)

	return &Container{
		ChatController:       chatController,
		UsageConsumerService: usageConsumer,
		Logger:               sysLogger,
	}
}
