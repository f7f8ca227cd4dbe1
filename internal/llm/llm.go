package llm

import (
	"fmt"

	"codeberg.org/studyhall/server/internal/config"
)

// builds the Anthropic generator and OpenAI embedder from configuration
func NewLLM(cfg config.LLMConfig) (LLM, error) {
	if cfg.AnthropicKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return &CompositeLLM{
		TextGenerator: NewAnthropicGenerator(AnthropicConfig{
			APIKey: cfg.AnthropicKey,
			Model:  cfg.GeneratorModel,
		}),
		Embedder: NewOpenAIEmbedder(OpenAIConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.EmbedderModel,
		}),
	}, nil
}
