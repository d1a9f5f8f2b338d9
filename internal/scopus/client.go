package scopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scholarai/discovery-service/internal/domain"
	"github.com/scholarai/discovery-service/internal/httpx"
)

const (
	// DefaultBaseURL is the default Scopus search API URL.
	DefaultBaseURL = "https://api.elsevier.com/content/search/scopus"

	// DefaultRateLimit is the default rate limit (5 requests per second).
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// apiKeyHeader is the HTTP header name for the Scopus API key.
	apiKeyHeader = "X-ELS-APIKey"

	// sourceName is the human-readable name for this source.
	sourceName = "Scopus"

	// doiPrefix is the URL prefix stripped from DOIs before querying.
	doiPrefix = "https://doi.org/"

	// scopusIDPrefix is stripped from dc:identifier values.
	scopusIDPrefix = "SCOPUS_ID:"
)

// Config holds configuration for the Scopus client.
type Config struct {
	// BaseURL is the Scopus search API URL.
	BaseURL string

	// APIKey is the Elsevier API key for authentication.
	// Required for all Scopus API requests.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client performs DOI indexing lookups against the Scopus search API.
type Client struct {
	config     Config
	httpClient *httpx.Client
}

// New creates a new Scopus client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := httpx.NewClient(httpx.ClientConfig{
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		UserAgent:    "ScholarAI-Discovery/2.0",
		APIKey:       cfg.APIKey,
		APIKeyHeader: apiKeyHeader,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new Scopus client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *httpx.Client) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.config.APIKey != ""
}

// CheckDOI looks up a DOI in the Scopus index. The zero IndexResult
// (not indexed) is returned alongside any error so callers can degrade
// without inspecting the failure.
func (c *Client) CheckDOI(ctx context.Context, doi string) (IndexResult, error) {
	if c.config.APIKey == "" || doi == "" {
		return IndexResult{}, nil
	}

	cleanDOI := strings.TrimPrefix(doi, doiPrefix)

	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return IndexResult{}, fmt.Errorf("parsing base URL: %w", err)
	}

	query := url.Values{}
	query.Set("query", fmt.Sprintf("DOI(%s)", cleanDOI))
	query.Set("count", "1")
	baseURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return IndexResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return IndexResult{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return IndexResult{}, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return IndexResult{}, fmt.Errorf("decoding response: %w", err)
	}

	total, _ := strconv.Atoi(searchResp.SearchResults.TotalResults)
	if total == 0 || len(searchResp.SearchResults.Entries) == 0 {
		return IndexResult{}, nil
	}

	entry := searchResp.SearchResults.Entries[0]
	result := IndexResult{
		Indexed:  true,
		ScopusID: strings.TrimPrefix(entry.Identifier, scopusIDPrefix),
	}
	for _, link := range entry.Links {
		if link.Ref == "scopus" {
			result.URL = link.Href
			break
		}
	}
	return result, nil
}

// SearchURL returns a Scopus title-search deep link for a paper title.
// No API key is needed to follow the link.
func SearchURL(title string) string {
	return "https://www.scopus.com/results/results.uri?sort=plf-f&src=s&sot=b&sdt=b&sl=50&s=TITLE%28" +
		url.PathEscape(title) + "%29"
}
