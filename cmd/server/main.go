package main

//go:generate go tool swag init -g main.go -d .,../../api/rest -o ../../docs

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/studyhall/server/internal/config"
	"codeberg.org/studyhall/server/internal/logger"
)

// @title Studyhall API
// @version 1.0
// @description Study assistant backend: upload notes, generate flashcards and quizzes, ask a tutor
// @description
// @description Features:
// @description - PDF, DOCX and TXT uploads, chunked and embedded for retrieval
// @description - Flashcard and quiz generation from uploaded notes
// @description - Tutor answers grounded in a single file
// @description - Daily usage limits per plan with remaining counts on every metered response

// @contact.name API Support
// @contact.url https://codeberg.org/studyhall/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	logger.Info("starting studyhall server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.FatalErr(err, "failed to create server")
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second, // generation calls can take a while
		IdleTimeout:       60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalErr(err, "server failed to start")
		}
	}()

	// start usage retention service with cancellable context
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go srv.cleanupService.Start(cleanupCtx)

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// stop retention service
	cleanupCancel()

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// close mongo, redis and database connections
	srv.Close(ctx)

	logger.Info("server stopped")
}
