package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/studyhall/server/internal/config"
	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/retriever"
	"codeberg.org/studyhall/server/internal/storage"
	"codeberg.org/studyhall/server/internal/studyai"
)

// creates and configures all service clients
func InitializeServices(cfg *config.Config, db *pgxpool.Pool) (*Services, error) {
	llmClient, err := llm.NewLLM(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retrieverClient := retriever.NewClient(db, llmClient, 0)
	storageClient := storage.NewClient(db)
	assistant := studyai.New(retrieverClient, llmClient, retrieverClient.TopK())

	return &Services{
		LLM:       llmClient,
		Retriever: retrieverClient,
		Storage:   storageClient,
		Assistant: assistant,
	}, nil
}
