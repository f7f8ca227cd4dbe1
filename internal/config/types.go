package config

import "time"

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWTSecret   string
	JWTExpiry   time.Duration
	RateLimit   string

	// empty allows any origin
	AllowedOrigins []string

	UploadMaxBytes int64

	Quota   QuotaConfig
	Ledger  LedgerConfig
	Storage StorageConfig
	LLM     LLMConfig
}

// daily limits for the free tier, -1 means unlimited
type QuotaConfig struct {
	FreeFlashcardDailyLimit int64
	FreeQnADailyLimit       int64
	FreeQuizDailyLimit      int64
}

type LedgerConfig struct {
	Backend       string // postgres, redis, mongo, memory
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	RetentionDays int
}

// optional S3-compatible archive for raw uploads
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type LLMConfig struct {
	OpenAIKey      string
	AnthropicKey   string
	EmbedderModel  string
	GeneratorModel string
}

type Flags struct {
	Command string
	Steps   int
}

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// archive is enabled only when endpoint and bucket are set
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}
