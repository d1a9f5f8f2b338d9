package openalex

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
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// OpenAlex polite pool (with email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultPageSize is the default number of works per page.
	DefaultPageSize = 50

	// sourceName is the human-readable name for this provider.
	sourceName = "OpenAlex"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// Providing an email grants access to higher rate limits.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// PageSize is the number of works fetched per page.
	// Defaults to 50, maximum is 200 per OpenAlex API.
	PageSize int
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
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize > 200 {
		c.PageSize = 200 // OpenAlex API limit
	}
}

// SearchQuery describes one works-search page request.
type SearchQuery struct {
	// Topic is the search text (required).
	Topic string

	// StartYear and EndYear bound the publication-date filter.
	StartYear int
	EndYear   int

	// OpenAccessOnly restricts results to open-access works.
	OpenAccessOnly bool

	// MinCitations filters out works below this citation count.
	MinCitations int

	// TypeFilter restricts the work type (article, review, ...).
	TypeFilter string

	// AuthorID restricts results to a resolved OpenAlex author ID.
	AuthorID string

	// SortBy selects the server-side ordering.
	SortBy domain.SortMode

	// Page is the 1-indexed page number.
	Page int
}

// WorksPage is one page of raw works plus the total match count.
type WorksPage struct {
	Works      []Work
	TotalCount int
}

// Client queries the OpenAlex works and autocomplete endpoints.
type Client struct {
	config     Config
	httpClient *httpx.Client
}

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := httpx.NewClient(httpx.ClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "ScholarAI-Discovery/2.0 (mailto:" + cfg.Email + ")",
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *httpx.Client) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// sortMapping maps sort modes to OpenAlex sort expressions.
var sortMapping = map[domain.SortMode]string{
	domain.SortRelevance: "relevance_score:desc",
	domain.SortCitations: "cited_by_count:desc",
	domain.SortYearDesc:  "publication_year:desc",
	domain.SortYearAsc:   "publication_year:asc",
}

// SearchWorks fetches one page of works matching the query.
func (c *Client) SearchWorks(ctx context.Context, q SearchQuery) (*WorksPage, error) {
	return c.fetchPage(ctx, q, true)
}

// FetchWorks fetches one page of works without a sort expression, relying
// on the provider's default ordering. Used by the export path.
func (c *Client) FetchWorks(ctx context.Context, q SearchQuery) (*WorksPage, error) {
	return c.fetchPage(ctx, q, false)
}

func (c *Client) fetchPage(ctx context.Context, q SearchQuery, withSort bool) (*WorksPage, error) {
	searchURL, err := c.buildSearchURL(q, withSort)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	var searchResp SearchResponse
	if err := c.getJSON(ctx, searchURL, &searchResp); err != nil {
		return nil, err
	}

	return &WorksPage{
		Works:      searchResp.Results,
		TotalCount: searchResp.Meta.Count,
	}, nil
}

// ResolveAuthor resolves an author display name to an OpenAlex author ID
// via the autocomplete endpoint. Returns domain.ErrNotFound when the name
// produces no hits.
func (c *Client) ResolveAuthor(ctx context.Context, name string) (*AutocompleteResult, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/autocomplete/authors"

	query := url.Values{}
	query.Set("q", name)
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}
	baseURL.RawQuery = query.Encode()

	var acResp AutocompleteResponse
	if err := c.getJSON(ctx, baseURL.String(), &acResp); err != nil {
		return nil, err
	}

	if len(acResp.Results) == 0 {
		return nil, domain.NewNotFoundError("author", name)
	}
	return &acResp.Results[0], nil
}

// GroupByYear aggregates works matching a concept-name search by
// publication year. Used by the trending endpoint.
func (c *Client) GroupByYear(ctx context.Context, field string) ([]GroupCount, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/works"

	query := url.Values{}
	query.Set("filter", "concepts.display_name.search:"+field)
	query.Set("group_by", "publication_year")
	query.Set("per_page", "10")
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}
	baseURL.RawQuery = query.Encode()

	var groupResp GroupByResponse
	if err := c.getJSON(ctx, baseURL.String(), &groupResp); err != nil {
		return nil, err
	}
	return groupResp.Groups, nil
}

// getJSON executes a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	// Limit body to 10MB to prevent resource exhaustion.
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// buildSearchURL constructs the works search URL with query parameters.
func (c *Client) buildSearchURL(q SearchQuery, withSort bool) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = "/works"

	query := url.Values{}
	if q.Topic != "" {
		query.Set("search", q.Topic)
	}

	filters := buildFilters(q)
	if len(filters) > 0 {
		query.Set("filter", strings.Join(filters, ","))
	}

	if withSort {
		sortExpr, ok := sortMapping[q.SortBy]
		if !ok {
			sortExpr = sortMapping[domain.SortRelevance]
		}
		query.Set("sort", sortExpr)
	}

	query.Set("per_page", strconv.Itoa(c.config.PageSize))

	page := q.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildFilters constructs the filter query string components.
func buildFilters(q SearchQuery) []string {
	filters := []string{
		fmt.Sprintf("from_publication_date:%d-01-01", q.StartYear),
		fmt.Sprintf("to_publication_date:%d-12-31", q.EndYear),
	}

	if q.OpenAccessOnly {
		filters = append(filters, "open_access.is_oa:true")
	}
	if q.MinCitations > 0 {
		filters = append(filters, fmt.Sprintf("cited_by_count:>%d", q.MinCitations))
	}
	if q.TypeFilter != "" {
		filters = append(filters, "type:"+q.TypeFilter)
	}
	if q.AuthorID != "" {
		filters = append(filters, "authorships.author.id:"+q.AuthorID)
	}

	return filters
}
