package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/config"
	"codeberg.org/studyhall/server/internal/ledger"
	"codeberg.org/studyhall/server/internal/logger"
	"codeberg.org/studyhall/server/internal/metrics"
	"codeberg.org/studyhall/server/internal/objectstore"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/internal/retention"
	"codeberg.org/studyhall/server/studyhall/files"
	"codeberg.org/studyhall/server/studyhall/flashcards"
	"codeberg.org/studyhall/server/studyhall/quizzes"
	"codeberg.org/studyhall/server/studyhall/users"
)

const (
	startupTimeout = 15 * time.Second

	// how often expired usage records are pruned
	retentionInterval = time.Hour
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	server := &Server{config: cfg}

	db, err := connectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	server.db = db

	if cfg.Ledger.RedisURL != "" {
		server.redis, err = connectRedis(ctx, cfg.Ledger.RedisURL)
		if err != nil {
			server.Close(context.Background())
			return nil, err
		}
	}

	store, err := server.ledgerStore(ctx)
	if err != nil {
		server.Close(context.Background())
		return nil, err
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		server.Close(context.Background())
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	services, err := InitializeServices(cfg, db)
	if err != nil {
		server.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Storage.Enabled() {
		archive, err := objectstore.NewArchive(cfg.Storage)
		if err != nil {
			server.Close(context.Background())
			return nil, fmt.Errorf("failed to create object storage client: %w", err)
		}

		if err := archive.EnsureBucket(ctx); err != nil {
			server.Close(context.Background())
			return nil, fmt.Errorf("failed to prepare upload bucket: %w", err)
		}

		server.archive = archive
		logger.Info("upload archive enabled", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)
	}

	collector := metrics.New()

	policy := quota.NewPolicy(quota.Limits{
		FreeFlashcards: cfg.Quota.FreeFlashcardDailyLimit,
		FreeQuizzes:    cfg.Quota.FreeQuizDailyLimit,
		FreeTutorQnA:   cfg.Quota.FreeQnADailyLimit,
	})

	usageLedger := ledger.New(store, policy, ledger.WithObserver(collector))

	server.userRepo = users.NewRepository(db)
	server.fileRepo = files.NewRepository(db)
	server.flashcardRepo = flashcards.NewRepository(db)
	server.quizRepo = quizzes.NewRepository(db)

	server.issuer = issuer
	server.metrics = collector
	server.policy = policy
	server.ledger = usageLedger
	server.meter = metering.New(usageLedger, server.userRepo)
	server.services = services

	server.cleanupService = retention.NewCleanupService(
		usageLedger,
		retentionInterval,
		cfg.Ledger.RetentionDays,
		func(n int64) {
			collector.RetentionPruned.Add(float64(n))
		},
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server.router = gin.New()

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close(context.Background())
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	logger.Info("server initialized",
		"ledger_backend", cfg.Ledger.Backend,
		"retention_days", cfg.Ledger.RetentionDays,
		"free_flashcards", cfg.Quota.FreeFlashcardDailyLimit,
		"free_quizzes", cfg.Quota.FreeQuizDailyLimit,
		"free_qna", cfg.Quota.FreeQnADailyLimit,
	)

	return server, nil
}

func connectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode doesn't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background()) //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// picks the usage ledger backend from configuration
func (s *Server) ledgerStore(ctx context.Context) (ledger.Store, error) {
	switch s.config.Ledger.Backend {
	case config.BackendRedis:
		// keep hashes a day past the retention window, zero falls back to the store default
		var ttl time.Duration
		if days := s.config.Ledger.RetentionDays; days > 0 {
			ttl = time.Duration(days+1) * 24 * time.Hour
		}

		return ledger.NewRedisStore(s.redis, ttl), nil

	case config.BackendMongo:
		client, err := connectMongo(ctx, s.config.Ledger.MongoURI)
		if err != nil {
			return nil, err
		}
		s.mongo = client

		store, err := ledger.NewMongoStore(ctx, client.Database(s.config.Ledger.MongoDatabase))
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo usage store: %w", err)
		}

		return store, nil

	case config.BackendMemory:
		logger.Warn("usage ledger is in memory, counts reset on restart and are not shared between replicas")
		return ledger.NewMemoryStore(), nil

	default:
		return ledger.NewPostgresStore(s.db), nil
	}
}

// Close releases every connection the server opened. Safe on a partially built server.
func (s *Server) Close(ctx context.Context) {
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			logger.ErrorErr(err, "failed to disconnect mongo")
		}
	}

	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.db != nil {
		s.db.Close()
	}
}
