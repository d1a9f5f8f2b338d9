package scopus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarai/discovery-service/internal/domain"
	"github.com/scholarai/discovery-service/internal/httpx"
)

func newTestClient(serverURL, apiKey string) *Client {
	cfg := Config{
		BaseURL:   serverURL,
		APIKey:    apiKey,
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
	}

	httpClient := httpx.NewClient(httpx.ClientConfig{
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		UserAgent:    "TestClient/1.0",
		APIKey:       cfg.APIKey,
		APIKeyHeader: "X-ELS-APIKey",
	})

	return NewWithHTTPClient(cfg, httpClient)
}

func indexedResponse() SearchResponse {
	return SearchResponse{
		SearchResults: SearchResults{
			TotalResults: "1",
			Entries: []Entry{
				{
					Identifier: "SCOPUS_ID:85012345678",
					DOI:        "10.1038/nature12373",
					Links: []Link{
						{Ref: "self", Href: "https://api.elsevier.com/content/abstract/scopus_id/85012345678"},
						{Ref: "scopus", Href: "https://www.scopus.com/inward/record.uri?eid=2-s2.0-85012345678"},
					},
				},
			},
		},
	}
}

func TestEnabled(t *testing.T) {
	assert.True(t, newTestClient("http://localhost", "key").Enabled())
	assert.False(t, newTestClient("http://localhost", "").Enabled())
}

func TestCheckDOI(t *testing.T) {
	t.Run("indexed DOI returns scopus id and link", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "key", r.Header.Get("X-ELS-APIKey"))
			assert.Equal(t, "DOI(10.1038/nature12373)", r.URL.Query().Get("query"))
			assert.Equal(t, "1", r.URL.Query().Get("count"))
			_ = json.NewEncoder(w).Encode(indexedResponse())
		}))
		defer server.Close()

		result, err := newTestClient(server.URL, "key").CheckDOI(context.Background(), "https://doi.org/10.1038/nature12373")
		require.NoError(t, err)

		assert.True(t, result.Indexed)
		assert.Equal(t, "85012345678", result.ScopusID)
		assert.Equal(t, "https://www.scopus.com/inward/record.uri?eid=2-s2.0-85012345678", result.URL)
	})

	t.Run("bare DOI is passed through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "DOI(10.1000/xyz)", r.URL.Query().Get("query"))
			_ = json.NewEncoder(w).Encode(SearchResponse{SearchResults: SearchResults{TotalResults: "0"}})
		}))
		defer server.Close()

		result, err := newTestClient(server.URL, "key").CheckDOI(context.Background(), "10.1000/xyz")
		require.NoError(t, err)
		assert.False(t, result.Indexed)
	})

	t.Run("zero results means not indexed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(SearchResponse{SearchResults: SearchResults{TotalResults: "0"}})
		}))
		defer server.Close()

		result, err := newTestClient(server.URL, "key").CheckDOI(context.Background(), "10.1000/missing")
		require.NoError(t, err)
		assert.Equal(t, IndexResult{}, result)
	})

	t.Run("missing key is a silent no-op", func(t *testing.T) {
		result, err := newTestClient("http://127.0.0.1:1", "").CheckDOI(context.Background(), "10.1000/xyz")
		require.NoError(t, err)
		assert.False(t, result.Indexed)
	})

	t.Run("empty DOI is a silent no-op", func(t *testing.T) {
		result, err := newTestClient("http://127.0.0.1:1", "key").CheckDOI(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, result.Indexed)
	})

	t.Run("upstream error surfaces as external API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad key", http.StatusUnauthorized)
		}))
		defer server.Close()

		result, err := newTestClient(server.URL, "key").CheckDOI(context.Background(), "10.1000/xyz")
		require.Error(t, err)
		assert.False(t, result.Indexed)

		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Scopus", apiErr.Source)
	})
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("Deep Learning")

	assert.Contains(t, got, "https://www.scopus.com/results/results.uri")
	assert.Contains(t, got, "TITLE%28")
	assert.Contains(t, got, "Deep%20Learning")
	assert.Contains(t, got, "%29")
}
