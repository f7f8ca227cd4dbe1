package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort                    = "8080"
	defaultJWTExpiryMinutes        = 60
	defaultRateLimit               = "200-M"
	defaultUploadMaxBytes          = 20 << 20
	defaultFreeFlashcardDailyLimit = 5
	defaultFreeQnADailyLimit       = 10
	defaultFreeQuizDailyLimit      = 0
	defaultRetentionDays           = 90
	defaultMongoDatabase           = "studyhall"
	defaultEmbedderModel           = "text-embedding-3-small"
	defaultGeneratorModel          = "claude-sonnet-4-20250514"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return load()
}

// loads only the database URL, for tools that never serve traffic
func LoadDatabaseURL() (string, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // .env is optional
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return databaseURL, nil
}

func load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if openaiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	if anthropicKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
	}

	jwtExpiry, err := intFromEnv("JWT_EXPIRY_MINUTES", defaultJWTExpiryMinutes)
	if err != nil {
		return nil, err
	}

	uploadMaxBytes, err := intFromEnv("UPLOAD_MAX_BYTES", defaultUploadMaxBytes)
	if err != nil {
		return nil, err
	}

	quota, err := loadQuotaConfig()
	if err != nil {
		return nil, err
	}

	ledger, err := loadLedgerConfig()
	if err != nil {
		return nil, err
	}

	useSSL, err := boolFromEnv("S3_USE_SSL", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           stringFromEnv("PORT", defaultPort),
		Environment:    stringFromEnv("ENVIRONMENT", "development"),
		DatabaseURL:    databaseURL,
		JWTSecret:      jwtSecret,
		JWTExpiry:      time.Duration(jwtExpiry) * time.Minute,
		RateLimit:      stringFromEnv("RATE_LIMIT", defaultRateLimit),
		AllowedOrigins: listFromEnv("CORS_ALLOWED_ORIGINS"),
		UploadMaxBytes: uploadMaxBytes,
		Quota:          quota,
		Ledger:         ledger,
		Storage: StorageConfig{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			UseSSL:    useSSL,
		},
		LLM: LLMConfig{
			OpenAIKey:      openaiKey,
			AnthropicKey:   anthropicKey,
			EmbedderModel:  stringFromEnv("EMBEDDER_MODEL", defaultEmbedderModel),
			GeneratorModel: stringFromEnv("GENERATOR_MODEL", defaultGeneratorModel),
		},
	}, nil
}

func loadQuotaConfig() (QuotaConfig, error) {
	flashcards, err := limitFromEnv("FREE_FLASHCARD_DAILY_LIMIT", defaultFreeFlashcardDailyLimit)
	if err != nil {
		return QuotaConfig{}, err
	}

	qna, err := limitFromEnv("FREE_QNA_DAILY_LIMIT", defaultFreeQnADailyLimit)
	if err != nil {
		return QuotaConfig{}, err
	}

	quizzes, err := limitFromEnv("FREE_QUIZ_DAILY_LIMIT", defaultFreeQuizDailyLimit)
	if err != nil {
		return QuotaConfig{}, err
	}

	return QuotaConfig{
		FreeFlashcardDailyLimit: flashcards,
		FreeQnADailyLimit:       qna,
		FreeQuizDailyLimit:      quizzes,
	}, nil
}

func loadLedgerConfig() (LedgerConfig, error) {
	backend := stringFromEnv("LEDGER_BACKEND", BackendPostgres)
	redisURL := os.Getenv("REDIS_URL")
	mongoURI := os.Getenv("MONGO_URI")

	switch backend {
	case BackendPostgres, BackendMemory:
	case BackendRedis:
		if redisURL == "" {
			return LedgerConfig{}, fmt.Errorf("REDIS_URL is required when LEDGER_BACKEND=redis")
		}
	case BackendMongo:
		if mongoURI == "" {
			return LedgerConfig{}, fmt.Errorf("MONGO_URI is required when LEDGER_BACKEND=mongo")
		}
	default:
		return LedgerConfig{}, fmt.Errorf("unsupported LEDGER_BACKEND: %s", backend)
	}

	retention, err := intFromEnv("USAGE_RETENTION_DAYS", defaultRetentionDays)
	if err != nil {
		return LedgerConfig{}, err
	}

	if retention < 0 {
		return LedgerConfig{}, fmt.Errorf("USAGE_RETENTION_DAYS must not be negative")
	}

	return LedgerConfig{
		Backend:       backend,
		RedisURL:      redisURL,
		MongoURI:      mongoURI,
		MongoDatabase: stringFromEnv("MONGO_DATABASE", defaultMongoDatabase),
		RetentionDays: int(retention),
	}, nil
}

func stringFromEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// comma separated, blanks dropped
func listFromEnv(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	return values
}

func intFromEnv(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return value, nil
}

// daily limits accept non-negative values or -1 for unlimited
func limitFromEnv(key string, fallback int64) (int64, error) {
	value, err := intFromEnv(key, fallback)
	if err != nil {
		return 0, err
	}

	if value < -1 {
		return 0, fmt.Errorf("%s must be -1 (unlimited) or a non-negative integer", key)
	}

	return value, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return value, nil
}
