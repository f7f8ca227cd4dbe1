package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/config"
	"codeberg.org/studyhall/server/internal/ledger"
	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/metrics"
	"codeberg.org/studyhall/server/internal/objectstore"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/internal/retention"
	"codeberg.org/studyhall/server/internal/retriever"
	"codeberg.org/studyhall/server/internal/storage"
	"codeberg.org/studyhall/server/internal/studyai"
	"codeberg.org/studyhall/server/studyhall/files"
	"codeberg.org/studyhall/server/studyhall/flashcards"
	"codeberg.org/studyhall/server/studyhall/quizzes"
	"codeberg.org/studyhall/server/studyhall/users"
)

// holds all dependencies and state for the API server
type Server struct {
	db     *pgxpool.Pool
	redis  *redis.Client // nil unless REDIS_URL is set
	mongo  *mongo.Client // nil unless the ledger runs on mongo
	config *config.Config

	issuer  *auth.Issuer
	metrics *metrics.Collector
	policy  *quota.Policy
	ledger  *ledger.Ledger
	meter   *metering.Meter
	archive *objectstore.Archive // nil when object storage is not configured

	userRepo      *users.Repository
	fileRepo      *files.Repository
	flashcardRepo *flashcards.Repository
	quizRepo      *quizzes.Repository

	services       *Services
	router         *gin.Engine
	cleanupService *retention.CleanupService
}

// holds all external service clients (LLM, retriever, chunk storage, assistant)
type Services struct {
	LLM       llm.LLM
	Retriever *retriever.Client
	Storage   *storage.Client
	Assistant *studyai.Assistant
}
