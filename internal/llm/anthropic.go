package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	defaultMaxTokens     = 2048
	defaultTemperature   = 0.3
)

// shared HTTP client for Anthropic API calls
var anthropicHTTPClient = &http.Client{
	Timeout: 90 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for Anthropic API calls (50 requests/second with burst capacity of 10)
var anthropicRateLimiter = rate.NewLimiter(50, 10)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type messagesResponse struct {
	ID      string    `json:"id"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	BaseURL     string // defaults to the public messages endpoint
}

type AnthropicGenerator struct {
	config     AnthropicConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAnthropicGenerator(config AnthropicConfig) *AnthropicGenerator {
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	if config.BaseURL == "" {
		config.BaseURL = anthropicMessagesURL
	}

	return &AnthropicGenerator{
		config:     config,
		httpClient: anthropicHTTPClient,
		limiter:    anthropicRateLimiter,
	}
}

func (g *AnthropicGenerator) Model() string {
	return g.config.Model
}

func (g *AnthropicGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	reqBody := messagesRequest{
		Model:       g.config.Model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: g.config.Temperature,
		Messages:    req.Messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderStatus, resp.StatusCode, string(body))
	}

	var apiResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return &TextGenerationResponse{
		Text: strings.TrimSpace(text.String()),
		Usage: Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
		},
	}, nil
}
