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

const (
	// summaryTemperature keeps completions factual rather than creative.
	summaryTemperature = 0.3
	// summaryMaxTokens bounds the completion length.
	summaryMaxTokens = 300

	maxLLMResponseBytes = 1 << 20
)

// OllamaClient talks to a local Ollama server over its chat API.
type OllamaClient struct {
	baseURL      string
	model        string
	probeTimeout time.Duration
	httpClient   *http.Client
	logger       zerolog.Logger
}

// NewOllamaClient creates an Ollama chat client.
func NewOllamaClient(cfg config.OllamaConfig, logger zerolog.Logger) *OllamaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}
	return &OllamaClient{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		model:        cfg.Model,
		probeTimeout: probeTimeout,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       observability.WithProviderContext(logger, "ollama", cfg.Model),
	}
}

// Name implements Provider.
func (c *OllamaClient) Name() string { return "ollama" }

// Model returns the configured model name.
func (c *OllamaClient) Model() string { return c.model }

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Available probes the server's model listing and reports whether the
// configured model is installed. Model names are compared without their
// tag suffix, so "llama3.2" matches an installed "llama3.2:latest".
func (c *OllamaClient) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("ollama probe failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLLMResponseBytes)).Decode(&tags); err != nil {
		return false
	}

	want := stripModelTag(c.model)
	for _, m := range tags.Models {
		if stripModelTag(m.Name) == want {
			return true
		}
	}
	return false
}

type ollamaChatRequest struct {
	Model    string            `json:"model"`
	Messages []chatMessage     `json:"messages"`
	Stream   bool              `json:"stream"`
	Options  ollamaChatOptions `json:"options"`
}

type ollamaChatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
}

// Summarize implements Provider using a single non-streaming chat turn.
func (c *OllamaClient) Summarize(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options: ollamaChatOptions{
			Temperature: summaryTemperature,
			NumPredict:  summaryMaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", wrapCallError(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", wrapCallError(c.Name(), fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw)))
	}

	var chat ollamaChatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLLMResponseBytes)).Decode(&chat); err != nil {
		return "", wrapCallError(c.Name(), fmt.Errorf("failed to decode chat response: %w", err))
	}
	return strings.TrimSpace(chat.Message.Content), nil
}

// stripModelTag drops the ":tag" suffix from a model name.
func stripModelTag(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[:i]
	}
	return name
}
