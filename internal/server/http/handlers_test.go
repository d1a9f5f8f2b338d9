package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarai/discovery-service/internal/config"
	"github.com/scholarai/discovery-service/internal/llm"
	"github.com/scholarai/discovery-service/internal/observability"
	"github.com/scholarai/discovery-service/internal/openalex"
	"github.com/scholarai/discovery-service/internal/scopus"
	"github.com/scholarai/discovery-service/internal/search"
)

// fakeProvider doubles as local and remote provider for handler tests.
type fakeProvider struct {
	name       string
	available  bool
	configured bool
	summary    string
	err        error
}

func (f *fakeProvider) Summarize(ctx context.Context, prompt string) (string, error) {
	return f.summary, f.err
}
func (f *fakeProvider) Name() string                       { return f.name }
func (f *fakeProvider) Available(ctx context.Context) bool { return f.available }
func (f *fakeProvider) Configured() bool                   { return f.configured }

type serverOptions struct {
	local  *fakeProvider
	remote *fakeProvider
	scopus string
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.EnvDevelopment,
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 8080, MetricsPort: 9091},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 3600},
		RateLimit:   config.RateLimitConfig{Search: 1000, Summarize: 1000, Export: 1000, Scopus: 1000, Health: 1000},
		LLM: config.LLMConfig{
			Mode:   config.ProviderModeAuto,
			Ollama: config.OllamaConfig{Model: "llama3.2"},
		},
	}
}

func newTestServer(t *testing.T, upstreamURL string, opts serverOptions) *Server {
	t.Helper()

	cfg := testConfig()
	if opts.local == nil {
		opts.local = &fakeProvider{name: "ollama"}
	}
	if opts.remote == nil {
		opts.remote = &fakeProvider{name: "openai"}
	}
	if opts.remote.configured {
		cfg.LLM.OpenAI.APIKey = "sk-test"
	}

	openalexClient := openalex.New(openalex.Config{
		BaseURL:   upstreamURL,
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
		PageSize:  50,
	})

	metrics := observability.NewMetrics(prometheus.NewRegistry(), "test")
	searchSvc := search.New(openalexClient, metrics, zerolog.Nop())
	selector := llm.NewSelector(cfg.LLM, opts.local, opts.remote, zerolog.Nop())
	scopusClient := scopus.New(scopus.Config{
		BaseURL:   upstreamURL,
		APIKey:    opts.scopus,
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
	})

	return NewServer(cfg, searchSvc, selector, scopusClient, metrics, zerolog.Nop())
}

func emptyUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openalex.SearchResponse{})
	}))
}

func doRequest(srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("missing topic rejected", func(t *testing.T) {
		upstream := emptyUpstream(t)
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet, "/search", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "topic")
	})

	t.Run("invalid limit rejected", func(t *testing.T) {
		upstream := emptyUpstream(t)
		defer upstream.Close()

		srv := newTestServer(t, upstream.URL, serverOptions{})
		for _, target := range []string{"/search?topic=x&limit=0", "/search?topic=x&limit=51", "/search?topic=x&limit=abc"} {
			rec := doRequest(srv, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})

	t.Run("successful search returns assembled result", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(openalex.SearchResponse{
				Meta: openalex.Meta{Count: 1},
				Results: []openalex.Work{
					{ID: "https://openalex.org/W1", Title: "A Paper", PublicationYear: 2024, CitedByCount: 5},
				},
			})
		}))
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet, "/search?topic=ml", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var result search.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "ml", result.Topic)
		assert.Equal(t, 1, result.TotalFound)
		require.Len(t, result.Papers, 1)
		assert.Equal(t, "A Paper", result.Papers[0].Title)
	})

	t.Run("upstream failure maps to bad gateway", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}))
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet, "/search?topic=ml", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestSummarizeEndpoint(t *testing.T) {
	upstream := emptyUpstream(t)
	defer upstream.Close()

	body := func(title, abstract string) []byte {
		b, _ := json.Marshal(map[string]string{"title": title, "abstract": abstract})
		return b
	}

	t.Run("missing abstract rejected", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			local: &fakeProvider{name: "ollama", available: true},
		})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("placeholder abstract rejected", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			local: &fakeProvider{name: "ollama", available: true},
		})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", "No abstract available."))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no provider yields service unavailable", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", "An abstract."))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("successful summary includes provider", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			local: &fakeProvider{name: "ollama", available: true, summary: "It works."},
		})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", "An abstract."))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp summarizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "It works.", resp.Summary)
		assert.Equal(t, "ollama", resp.Provider)
	})

	t.Run("timeout maps to gateway timeout", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			local: &fakeProvider{
				name:      "ollama",
				available: true,
				err:       &llm.CallError{Provider: "ollama", Timeout: true, Err: context.DeadlineExceeded},
			},
		})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", "An abstract."))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("local provider failure hints at local server", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			local: &fakeProvider{
				name:      "ollama",
				available: true,
				err:       &llm.CallError{Provider: "ollama", Err: errors.New("connection refused")},
			},
		})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", "An abstract."))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ollama is running")
	})

	t.Run("remote provider failure hints at API key", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			remote: &fakeProvider{
				name:       "openai",
				configured: true,
				err:        &llm.CallError{Provider: "openai", Err: errors.New("401")},
			},
		})
		rec := doRequest(srv, http.MethodPost, "/summarize", body("T", "An abstract."))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "API key")
	})
}

func TestCiteEndpoints(t *testing.T) {
	upstream := emptyUpstream(t)
	defer upstream.Close()

	paper := map[string]interface{}{
		"title":   "A Paper",
		"year":    2023,
		"journal": "Nature",
		"doi":     "https://doi.org/10.1000/abc",
		"authors": []map[string]string{{"name": "Alice Smith"}},
	}

	t.Run("single citation bibtex by default", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{"paper": paper})
		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodPost, "/cite", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp citeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Citation, "@article{abc,")
		assert.Contains(t, resp.Citation, "author = {Alice Smith}")
	})

	t.Run("missing paper rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{"format": "bibtex"})
		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodPost, "/cite", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No paper data provided")
	})

	t.Run("unsupported format rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{"format": "chicago", "paper": paper})
		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodPost, "/cite", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "chicago")
	})

	t.Run("batch citations joined", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"format": "apa",
			"papers": []interface{}{paper, paper},
		})
		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodPost, "/cite/batch", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp batchCiteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, strings.Split(resp.Citations, "\n"), 2)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{"format": "apa", "papers": []interface{}{}})
		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodPost, "/cite/batch", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No papers provided")
	})
}

func TestExportEndpoint(t *testing.T) {
	t.Run("sets workbook content type and filename", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(openalex.SearchResponse{
				Meta: openalex.Meta{Count: 1},
				Results: []openalex.Work{
					{ID: "https://openalex.org/W1", Title: "A Paper", PublicationYear: 2024},
				},
			})
		}))
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet,
			"/export?topic=machine+learning&start_year=2020&end_year=2025", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			rec.Header().Get("Content-Type"))
		assert.Equal(t,
			"attachment; filename=research_machine_learning_2020_2025.xlsx",
			rec.Header().Get("Content-Disposition"))
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("missing topic rejected", func(t *testing.T) {
		upstream := emptyUpstream(t)
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet, "/export", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTrendingEndpoint(t *testing.T) {
	t.Run("defaults field to computer-science", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "concepts.display_name.search:computer-science", r.URL.Query().Get("filter"))
			_ = json.NewEncoder(w).Encode(openalex.GroupByResponse{
				Groups: []openalex.GroupCount{{Key: "2025", Count: 7}},
			})
		}))
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet, "/trending", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp search.TrendingResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "computer-science", resp.Field)
		require.Len(t, resp.Data, 1)
	})
}

func TestScopusCheckEndpoint(t *testing.T) {
	t.Run("disabled without API key", func(t *testing.T) {
		upstream := emptyUpstream(t)
		defer upstream.Close()

		rec := doRequest(newTestServer(t, upstream.URL, serverOptions{}), http.MethodGet, "/scopus/check?doi=10.1/x", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing doi rejected", func(t *testing.T) {
		upstream := emptyUpstream(t)
		defer upstream.Close()

		srv := newTestServer(t, upstream.URL, serverOptions{scopus: "key"})
		rec := doRequest(srv, http.MethodGet, "/scopus/check", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("indexed DOI reported", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"search-results": map[string]interface{}{
					"opensearch:totalResults": "1",
					"entry": []map[string]interface{}{
						{
							"dc:identifier": "SCOPUS_ID:123",
							"link": []map[string]string{
								{"@ref": "scopus", "@href": "https://www.scopus.com/record/123"},
							},
						},
					},
				},
			})
		}))
		defer upstream.Close()

		srv := newTestServer(t, upstream.URL, serverOptions{scopus: "key"})
		rec := doRequest(srv, http.MethodGet, "/scopus/check?doi=10.1/x", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var result scopus.IndexResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Indexed)
		assert.Equal(t, "123", result.ScopusID)
	})
}

func TestHealthEndpoint(t *testing.T) {
	upstream := emptyUpstream(t)
	defer upstream.Close()

	t.Run("reports active local provider", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{
			local: &fakeProvider{name: "ollama", available: true},
		})
		rec := doRequest(srv, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, Version, resp.Version)
		assert.True(t, resp.AIEnabled)
		assert.Equal(t, "ollama", resp.AIProvider)
		assert.True(t, resp.OllamaAvailable)
		assert.Equal(t, "llama3.2", resp.OllamaModel)
		assert.False(t, resp.ScopusEnabled)
		assert.Contains(t, resp.DataSource, "OpenAlex")
	})

	t.Run("reports none without providers", func(t *testing.T) {
		srv := newTestServer(t, upstream.URL, serverOptions{})
		rec := doRequest(srv, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.AIEnabled)
		assert.Equal(t, "none", resp.AIProvider)
		assert.False(t, resp.OllamaAvailable)
		assert.Empty(t, resp.OllamaModel)
	})
}
