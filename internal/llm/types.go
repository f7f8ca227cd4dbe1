package llm

import (
	"context"
	"errors"
)

// returned when a provider answers with a non-2xx status
var ErrProviderStatus = errors.New("llm provider returned an error status")

// generation plus embeddings, the two model capabilities the server uses
type LLM interface {
	TextGenerator
	Embedder
}

type TextGenerator interface {
	GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error)
}

// generates embeddings from text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TextGenerationRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
}

type TextGenerationResponse struct {
	Text  string
	Usage Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// combines a TextGenerator and an Embedder into a single LLM
type CompositeLLM struct {
	TextGenerator
	Embedder
}
