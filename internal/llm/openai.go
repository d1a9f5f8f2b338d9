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

	"github.com/rs/zerolog"

	"github.com/scholarai/discovery-service/internal/config"
	"github.com/scholarai/discovery-service/internal/observability"
)

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewOpenAIClient creates an OpenAI chat client.
func NewOpenAIClient(cfg config.OpenAIConfig, logger zerolog.Logger) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     observability.WithProviderContext(logger, "openai", cfg.Model),
	}
}

// Name implements Provider.
func (c *OpenAIClient) Name() string { return "openai" }

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Configured reports whether an API key is set.
func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

type openAIChatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize implements Provider using a single chat completion.
func (c *OpenAIClient) Summarize(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", wrapCallError(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug().Int("status", resp.StatusCode).Msg("chat completion failed")
		return "", wrapCallError(c.Name(), fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw)))
	}

	var chat openAIChatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLLMResponseBytes)).Decode(&chat); err != nil {
		return "", wrapCallError(c.Name(), fmt.Errorf("failed to decode chat response: %w", err))
	}
	if len(chat.Choices) == 0 {
		return "", wrapCallError(c.Name(), fmt.Errorf("response contained no choices"))
	}
	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}
