package httpserver

import "github.com/scholarai/discovery-service/internal/domain"

// Request and response types for JSON serialization.

type summarizeRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

type summarizeResponse struct {
	Summary  string `json:"summary"`
	Provider string `json:"provider"`
}

type citeResponse struct {
	Citation string `json:"citation"`
}

type batchCiteRequest struct {
	Papers []domain.Paper `json:"papers"`
	Format string         `json:"format"`
}

type batchCiteResponse struct {
	Citations string `json:"citations"`
}

type healthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Environment      string `json:"environment"`
	AIEnabled        bool   `json:"ai_enabled"`
	AIProvider       string `json:"ai_provider"`
	OllamaAvailable  bool   `json:"ollama_available"`
	OllamaModel      string `json:"ollama_model,omitempty"`
	OpenAIConfigured bool   `json:"openai_configured"`
	ScopusEnabled    bool   `json:"scopus_enabled"`
	DataSource       string `json:"data_source"`
}
