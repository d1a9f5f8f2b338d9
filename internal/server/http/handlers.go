package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/scholarai/discovery-service/internal/domain"
)

// maxRequestBodySize limits JSON request bodies.
const maxRequestBodySize = 1 << 20

// queryInt parses an integer query parameter, returning def when absent.
// A second return of false signals an unparsable value.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// queryBool parses a boolean query parameter, defaulting to false.
func queryBool(r *http.Request, name string) bool {
	raw := strings.ToLower(r.URL.Query().Get(name))
	return raw == "true" || raw == "1" || raw == "yes"
}

// writeDomainError maps domain errors to HTTP status codes. Upstream
// provider failures become 502, validation errors 400.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var apiErr *domain.ExternalAPIError
	if errors.As(err, &apiErr) {
		writeError(w, http.StatusBadGateway, "Failed to fetch from "+apiErr.Source+": upstream returned "+strconv.Itoa(apiErr.StatusCode))
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, "Failed to fetch from upstream: "+err.Error())
}

// scopusCheck handles GET /scopus/check. Lookup failures degrade to a
// not-indexed result rather than failing the request.
func (s *Server) scopusCheck(w http.ResponseWriter, r *http.Request) {
	if !s.scopusClient.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Scopus API key not configured. Set SCHOLARAI_SCOPUS_API_KEY in the environment")
		return
	}

	doi := r.URL.Query().Get("doi")
	if doi == "" {
		writeError(w, http.StatusBadRequest, "doi query parameter is required")
		return
	}

	result, err := s.scopusClient.CheckDOI(r.Context(), doi)
	if err != nil {
		s.metrics.ScopusChecks.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("doi", doi).Msg("scopus lookup failed")
		writeJSON(w, http.StatusOK, result)
		return
	}

	outcome := "not_indexed"
	if result.Indexed {
		outcome = "indexed"
	}
	s.metrics.ScopusChecks.WithLabelValues(outcome).Inc()
	writeJSON(w, http.StatusOK, result)
}

// healthCheck handles GET /health. It reports the active summarization
// provider alongside static service facts so operators can see at a
// glance whether AI features are usable.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := s.llmSelector.ActiveName(ctx)
	ollamaOK := s.llmSelector.LocalAvailable(ctx)

	resp := healthResponse{
		Status:           "healthy",
		Version:          Version,
		Environment:      s.cfg.Environment,
		AIEnabled:        provider != "",
		AIProvider:       provider,
		OllamaAvailable:  ollamaOK,
		OpenAIConfigured: s.cfg.LLM.OpenAI.APIKey != "",
		ScopusEnabled:    s.scopusClient.Enabled(),
		DataSource:       "OpenAlex (260M+ scholarly works)",
	}
	if resp.AIProvider == "" {
		resp.AIProvider = "none"
	}
	if ollamaOK {
		resp.OllamaModel = s.cfg.LLM.Ollama.Model
	}
	writeJSON(w, http.StatusOK, resp)
}
