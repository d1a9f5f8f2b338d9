// Package search orchestrates the discovery pipeline: provider queries,
// author resolution, projection, ranking and trending aggregation.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarai/discovery-service/internal/domain"
	"github.com/scholarai/discovery-service/internal/observability"
	"github.com/scholarai/discovery-service/internal/openalex"
	"github.com/scholarai/discovery-service/internal/ranking"
)

const (
	// DefaultLimit is the page size returned to clients.
	DefaultLimit = 10
	// MaxLimit caps the client-requested page size.
	MaxLimit = 50
	// defaultYearSpan is subtracted from the current year when no start
	// year is given.
	defaultYearSpan = 5
)

// Request describes one search or export invocation.
type Request struct {
	Topic          string
	Limit          int
	Page           int
	StartYear      int
	EndYear        int
	OpenAccessOnly bool
	MinCitations   int
	SortBy         domain.SortMode
	TypeFilter     string
	Author         string
}

// Result is the assembled search response.
type Result struct {
	Topic         string         `json:"topic"`
	YearsFilter   string         `json:"years_filter"`
	TotalFound    int            `json:"total_found"`
	TotalJournals int            `json:"total_journals"`
	Page          int            `json:"page"`
	PerPage       int            `json:"per_page,omitempty"`
	Papers        []domain.Paper `json:"results"`
}

// TrendingResult is the per-year aggregation response.
type TrendingResult struct {
	Field string                `json:"field"`
	Data  []openalex.GroupCount `json:"data"`
}

// Service runs the discovery pipeline against the metadata provider.
type Service struct {
	client  *openalex.Client
	metrics *observability.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a search service.
func New(client *openalex.Client, metrics *observability.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		client:  client,
		metrics: metrics,
		logger:  logger.With().Str("component", "search_service").Logger(),
		now:     time.Now,
	}
}

// normalize fills request defaults: the year window defaults to the last
// five years ending now, the limit to the standard page size.
func (s *Service) normalize(req *Request) {
	currentYear := s.now().Year()
	if req.StartYear == 0 {
		req.StartYear = currentYear - defaultYearSpan
	}
	if req.EndYear == 0 {
		req.EndYear = currentYear
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.Page < 1 {
		req.Page = 1
	}
}

// Search runs the full discovery pipeline for one page: optional author
// resolution, a provider works query, projection with hybrid scoring,
// local re-ranking under relevance sort, and truncation to the requested
// limit.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	s.normalize(&req)
	log := observability.WithSearchContext(s.logger, req.Topic, string(req.SortBy))

	query := openalex.SearchQuery{
		Topic:          req.Topic,
		StartYear:      req.StartYear,
		EndYear:        req.EndYear,
		OpenAccessOnly: req.OpenAccessOnly,
		MinCitations:   req.MinCitations,
		TypeFilter:     req.TypeFilter,
		SortBy:         req.SortBy,
		Page:           req.Page,
	}

	if req.Author != "" {
		query.AuthorID = s.resolveAuthor(ctx, req.Author)
	}

	page, err := s.client.SearchWorks(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Topic:       req.Topic,
		YearsFilter: yearsFilter(req.StartYear, req.EndYear),
		Page:        req.Page,
		Papers:      []domain.Paper{},
	}
	if len(page.Works) == 0 {
		log.Debug().Msg("search returned no works")
		return result, nil
	}

	papers := ranking.ProjectPage(page.Works, req.StartYear, req.EndYear)

	journals := make(map[string]struct{}, len(papers))
	for _, p := range papers {
		journals[p.Journal] = struct{}{}
	}

	ranking.Rank(papers, req.SortBy)

	if len(papers) > req.Limit {
		papers = papers[:req.Limit]
	}

	result.TotalFound = page.TotalCount
	result.TotalJournals = len(journals)
	result.PerPage = req.Limit
	result.Papers = papers

	s.metrics.PapersPerSearch.Observe(float64(len(papers)))
	log.Debug().
		Int("total_found", page.TotalCount).
		Int("returned", len(papers)).
		Msg("search completed")
	return result, nil
}

// resolveAuthor maps an author name to a provider author ID. Resolution
// failures and misses degrade to an unfiltered search with a warning
// rather than failing the request.
func (s *Service) resolveAuthor(ctx context.Context, name string) string {
	author, err := s.client.ResolveAuthor(ctx, name)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrNotFound) {
			outcome = "not_found"
		}
		s.metrics.AuthorResolutions.WithLabelValues(outcome).Inc()
		s.logger.Warn().Err(err).Str("author", name).Msg("author resolution failed, skipping author filter")
		return ""
	}
	s.metrics.AuthorResolutions.WithLabelValues("resolved").Inc()
	s.logger.Info().
		Str("author", name).
		Str("author_id", author.ID).
		Str("display_name", author.DisplayName).
		Msg("resolved author")
	return author.ID
}

// Export fetches one provider-ordered page for spreadsheet export. No
// re-ranking or truncation is applied; the full fetched page is returned.
func (s *Service) Export(ctx context.Context, req Request) ([]domain.Paper, error) {
	s.normalize(&req)

	page, err := s.client.FetchWorks(ctx, openalex.SearchQuery{
		Topic:          req.Topic,
		StartYear:      req.StartYear,
		EndYear:        req.EndYear,
		OpenAccessOnly: req.OpenAccessOnly,
		MinCitations:   req.MinCitations,
		Page:           1,
	})
	if err != nil {
		return nil, err
	}
	return ranking.ProjectPage(page.Works, req.StartYear, req.EndYear), nil
}

// YearWindow returns the effective year window for a request after
// defaulting, used to build export filenames.
func (s *Service) YearWindow(req Request) (int, int) {
	s.normalize(&req)
	return req.StartYear, req.EndYear
}

// Trending aggregates works in a field by publication year.
func (s *Service) Trending(ctx context.Context, field string) (*TrendingResult, error) {
	groups, err := s.client.GroupByYear(ctx, field)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []openalex.GroupCount{}
	}
	return &TrendingResult{Field: field, Data: groups}, nil
}

func yearsFilter(start, end int) string {
	return fmt.Sprintf("%d-%d", start, end)
}
