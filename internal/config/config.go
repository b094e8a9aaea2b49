package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"industrial-ai-be/internal/pkg/apperror"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider    string // "openai" or "ollama"
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "openai" or "ollama"
	LLMModel             string
}

type RagConfig struct {
	TopK                     int
	MatchThreshold           float64
	MinConfidenceThreshold   float64
	WebSearchEnabled         bool
	MaxWebSearchesPerSession int
	WebSearchMaxResults      int
	WebSearchContext         string
	SessionWindowSize        int
	RecentContextSize        int
	MaxContextChars          int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "openai"),
			OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "openai"),
			LLMModel:             getEnv("LLM_MODEL", "gpt-4o"),
		},
		Rag: RagConfig{
			TopK:                     getEnvAsInt("RAG_TOP_K", 5),
			MatchThreshold:           getEnvAsFloat("RAG_MATCH_THRESHOLD", 0.0),
			MinConfidenceThreshold:   getEnvAsFloat("MIN_CONFIDENCE_THRESHOLD", 0.5),
			WebSearchEnabled:         getEnvAsBool("WEB_SEARCH_ENABLED", true),
			MaxWebSearchesPerSession: getEnvAsInt("MAX_WEB_SEARCHES_PER_SESSION", 5),
			WebSearchMaxResults:      getEnvAsInt("WEB_SEARCH_MAX_RESULTS", 3),
			WebSearchContext:         getEnv("WEB_SEARCH_CONTEXT", "industrial automation"),
			SessionWindowSize:        getEnvAsInt("SESSION_WINDOW_SIZE", 10),
			RecentContextSize:        getEnvAsInt("RECENT_CONTEXT_SIZE", 3),
			MaxContextChars:          getEnvAsInt("MAX_CONTEXT_CHARS", 8000),
		},
	}
}

// Validate rejects invalid configuration before any external call is made.
func (c *Config) Validate() error {
	if c.Database.Connection == "" {
		return apperror.New(apperror.KindConfiguration, "DB_CONNECTION_STRING is required")
	}
	if c.Rag.TopK <= 0 {
		return apperror.New(apperror.KindConfiguration, fmt.Sprintf("RAG_TOP_K must be positive, got %d", c.Rag.TopK))
	}
	if c.Rag.MatchThreshold < 0 || c.Rag.MatchThreshold > 1 {
		return apperror.New(apperror.KindConfiguration, fmt.Sprintf("RAG_MATCH_THRESHOLD must be in [0,1], got %g", c.Rag.MatchThreshold))
	}
	if c.Rag.MinConfidenceThreshold < 0 || c.Rag.MinConfidenceThreshold > 1 {
		return apperror.New(apperror.KindConfiguration, fmt.Sprintf("MIN_CONFIDENCE_THRESHOLD must be in [0,1], got %g", c.Rag.MinConfidenceThreshold))
	}
	if c.Rag.MaxWebSearchesPerSession < 0 {
		return apperror.New(apperror.KindConfiguration, "MAX_WEB_SEARCHES_PER_SESSION must not be negative")
	}
	if c.Rag.WebSearchMaxResults <= 0 {
		return apperror.New(apperror.KindConfiguration, "WEB_SEARCH_MAX_RESULTS must be positive")
	}
	if c.Rag.SessionWindowSize <= 0 {
		return apperror.New(apperror.KindConfiguration, "SESSION_WINDOW_SIZE must be positive")
	}
	if c.Rag.RecentContextSize <= 0 || c.Rag.RecentContextSize > c.Rag.SessionWindowSize {
		return apperror.New(apperror.KindConfiguration, "RECENT_CONTEXT_SIZE must be positive and at most SESSION_WINDOW_SIZE")
	}
	if c.Rag.MaxContextChars <= 0 {
		return apperror.New(apperror.KindConfiguration, "MAX_CONTEXT_CHARS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
