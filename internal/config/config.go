package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port     string
	DBFile   string
	LogLevel string

	// S3
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UploadPrefix    string
	S3UseSSL          bool

	// LLM
	LLMProvider           string
	OpenRouterAPIKey      string
	OpenRouterModel       string
	OpenRouterVisionModel string

	// Semantic formation context guard. Token counts are a chars/4 estimate;
	// the limit defaults to a safe 100k-token threshold.
	ContextLimitTokens  int
	ContextCharsPerTok  int
	ContextPromptTokens int

	// Batch fill / parse worker pool size. The dominant cost is LLM round
	// trips, so this should track the provider's rate limit.
	FillConcurrency int

	// Question sets
	GeneralQuestionsFile string
	SchoolQuestionsFile  string

	// Auth
	JWTSecret string

	// Upload limits
	MaxFileSize int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DBFile:                getEnv("DB_FILE", "data/docufill.db"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		S3Endpoint:            getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:         getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:     getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:          getEnv("S3_BUCKET_NAME", "user-documents"),
		S3UploadPrefix:        getEnv("S3_UPLOAD_PREFIX", "user-uploads"),
		S3UseSSL:              getEnv("S3_USE_SSL", "false") == "true",
		LLMProvider:           getEnv("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey:      getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:       getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterVisionModel: getEnv("OPENROUTER_VISION_MODEL", "openai/gpt-4o"),
		ContextLimitTokens:    getEnvInt("CONTEXT_LIMIT_TOKENS", 100000),
		ContextCharsPerTok:    getEnvInt("CONTEXT_CHARS_PER_TOKEN", 4),
		ContextPromptTokens:   getEnvInt("CONTEXT_PROMPT_TOKENS", 2000),
		FillConcurrency:       getEnvInt("FILL_CONCURRENCY", 4),
		GeneralQuestionsFile:  getEnv("GENERAL_QUESTIONS_FILE", "config/general_questions.json"),
		SchoolQuestionsFile:   getEnv("SCHOOL_QUESTIONS_FILE", "config/school_questions.json"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		MaxFileSize:           10 * 1024 * 1024,
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
