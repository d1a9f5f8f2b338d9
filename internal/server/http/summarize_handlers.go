package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/scholarai/discovery-service/internal/llm"
	"github.com/scholarai/discovery-service/internal/ranking"
)

// summarizePaper handles POST /summarize. Provider selection happens per
// request so a local model server started mid-session is picked up
// without a restart.
func (s *Server) summarizePaper(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req summarizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if req.Abstract == "" || req.Abstract == ranking.NoAbstractPlaceholder {
		writeError(w, http.StatusBadRequest, "This paper doesn't have an abstract available, so we can't generate a summary. Try another paper!")
		return
	}

	provider, err := s.llmSelector.Select(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "No AI provider available. Install Ollama (free) or set SCHOLARAI_OPENAI_API_KEY in the environment")
		return
	}

	prompt := llm.SummaryPrompt(req.Title, req.Abstract)

	s.metrics.SummariesTotal.WithLabelValues(provider.Name()).Inc()
	s.logger.Info().Str("provider", provider.Name()).Msg("generating summary")

	start := time.Now()
	summary, err := provider.Summarize(r.Context(), prompt)
	if err != nil {
		s.writeSummaryError(w, provider.Name(), err)
		return
	}
	s.metrics.SummaryDuration.WithLabelValues(provider.Name()).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, summarizeResponse{
		Summary:  summary,
		Provider: provider.Name(),
	})
}

// writeSummaryError maps provider call failures: timeouts become 504,
// everything else 502 with a provider-specific hint.
func (s *Server) writeSummaryError(w http.ResponseWriter, providerName string, err error) {
	if llm.IsTimeout(err) {
		s.metrics.SummariesFailed.WithLabelValues(providerName, "timeout").Inc()
		s.logger.Error().Err(err).Str("provider", providerName).Msg("summarization timed out")
		writeError(w, http.StatusGatewayTimeout, "AI is taking too long to respond. The model might be busy - please try again in a moment.")
		return
	}

	s.metrics.SummariesFailed.WithLabelValues(providerName, "upstream").Inc()
	s.logger.Error().Err(err).Str("provider", providerName).Msg("summarization failed")

	msg := "AI summary service is temporarily unavailable. "
	var callErr *llm.CallError
	if errors.As(err, &callErr) && callErr.Provider == "ollama" {
		msg += "Make sure Ollama is running on your system."
	} else {
		msg += "Please check your API key and try again."
	}
	writeError(w, http.StatusBadGateway, msg)
}
