package main

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authapi "codeberg.org/studyhall/server/api/rest/auth"
	flashcardsapi "codeberg.org/studyhall/server/api/rest/flashcards"
	filesapi "codeberg.org/studyhall/server/api/rest/files"
	"codeberg.org/studyhall/server/api/rest/health"
	quizzesapi "codeberg.org/studyhall/server/api/rest/quizzes"
	"codeberg.org/studyhall/server/api/rest/tutor"
	"codeberg.org/studyhall/server/api/rest/usage"
	"codeberg.org/studyhall/server/internal/logger"
	"codeberg.org/studyhall/server/internal/ratelimit"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	limiter, err := ratelimit.Middleware(server.config.RateLimit, server.redis)
	if err != nil {
		return err
	}

	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(server.metrics.Middleware())
	router.Use(cors.New(corsConfig(server.config.AllowedOrigins)))

	router.GET("/health", health.Handler(server.healthChecks()))
	router.GET("/metrics", gin.WrapH(server.metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(limiter)

	{
		v1.GET("/ping", health.PingHandler)

		authapi.RegisterRoutes(v1, server.userRepo, server.issuer)

		filesapi.RegisterRoutes(v1, server.issuer, filesapi.Dependencies{
			Files:          server.fileRepo,
			Chunks:         server.services.Storage,
			Embedder:       server.services.LLM,
			Archive:        server.uploadArchive(),
			MaxUploadBytes: server.config.UploadMaxBytes,
		})

		flashcardsapi.RegisterRoutes(v1, server.issuer, flashcardsapi.Dependencies{
			Files:     server.fileRepo,
			Cards:     server.flashcardRepo,
			Generator: server.services.Assistant,
			Meter:     server.meter,
		})

		quizzesapi.RegisterRoutes(v1, server.issuer, quizzesapi.Dependencies{
			Files:     server.fileRepo,
			Quizzes:   server.quizRepo,
			Generator: server.services.Assistant,
			Meter:     server.meter,
		})

		tutor.RegisterRoutes(v1, server.issuer, tutor.Dependencies{
			Files:     server.fileRepo,
			Assistant: server.services.Assistant,
			Meter:     server.meter,
		})

		usage.RegisterRoutes(v1, server.issuer, usage.Dependencies{
			Ledger: server.ledger,
			Policy: server.policy,
			Tiers:  server.userRepo,
		})
	}

	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Quota-Limit", "X-Quota-Remaining", "Retry-After", "X-Request-ID"}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cfg
}

// nil interface when archiving is disabled
func (s *Server) uploadArchive() filesapi.Archive {
	if s.archive == nil {
		return nil
	}

	return s.archive
}

func (s *Server) healthChecks() map[string]health.Checker {
	checks := map[string]health.Checker{
		"postgres": s.db,
	}

	if s.redis != nil {
		checks["redis"] = health.CheckFunc(func(ctx context.Context) error {
			return s.redis.Ping(ctx).Err()
		})
	}

	if s.mongo != nil {
		checks["mongo"] = health.CheckFunc(func(ctx context.Context) error {
			return s.mongo.Ping(ctx, nil)
		})
	}

	return checks
}
