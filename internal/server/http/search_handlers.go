package httpserver

import (
	"bytes"
	"net/http"
	"time"

	"github.com/scholarai/discovery-service/internal/domain"
	"github.com/scholarai/discovery-service/internal/export"
	"github.com/scholarai/discovery-service/internal/search"
)

// searchPapers handles GET /search.
func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic query parameter is required")
		return
	}

	limit, ok := queryInt(r, "limit", search.DefaultLimit)
	if !ok || limit < 1 || limit > search.MaxLimit {
		writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 50")
		return
	}
	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	startYear, ok := queryInt(r, "start_year", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "start_year must be an integer")
		return
	}
	endYear, ok := queryInt(r, "end_year", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "end_year must be an integer")
		return
	}
	minCitations, ok := queryInt(r, "min_citations", 0)
	if !ok || minCitations < 0 {
		writeError(w, http.StatusBadRequest, "min_citations must be a non-negative integer")
		return
	}

	sortBy := domain.ParseSortMode(r.URL.Query().Get("sort_by"))

	req := search.Request{
		Topic:          topic,
		Limit:          limit,
		Page:           page,
		StartYear:      startYear,
		EndYear:        endYear,
		OpenAccessOnly: queryBool(r, "open_access_only"),
		MinCitations:   minCitations,
		SortBy:         sortBy,
		TypeFilter:     r.URL.Query().Get("type_filter"),
		Author:         r.URL.Query().Get("author"),
	}

	s.metrics.SearchesTotal.WithLabelValues(string(sortBy)).Inc()
	start := time.Now()

	result, err := s.searchSvc.Search(r.Context(), req)
	if err != nil {
		s.metrics.SearchesFailed.Inc()
		s.logger.Error().Err(err).Str("topic", topic).Msg("search failed")
		s.writeDomainError(w, err)
		return
	}

	s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, result)
}

// exportPapers handles GET /export. The workbook is fully built in
// memory before any response bytes are written, so upstream failures can
// still produce a JSON error.
func (s *Server) exportPapers(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic query parameter is required")
		return
	}

	startYear, ok := queryInt(r, "start_year", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "start_year must be an integer")
		return
	}
	endYear, ok := queryInt(r, "end_year", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "end_year must be an integer")
		return
	}
	minCitations, ok := queryInt(r, "min_citations", 0)
	if !ok || minCitations < 0 {
		writeError(w, http.StatusBadRequest, "min_citations must be a non-negative integer")
		return
	}

	req := search.Request{
		Topic:          topic,
		StartYear:      startYear,
		EndYear:        endYear,
		OpenAccessOnly: queryBool(r, "open_access_only"),
		MinCitations:   minCitations,
	}

	s.metrics.ExportsTotal.Inc()

	papers, err := s.searchSvc.Export(r.Context(), req)
	if err != nil {
		s.metrics.ExportsFailed.Inc()
		s.logger.Error().Err(err).Str("topic", topic).Msg("export fetch failed")
		s.writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, papers); err != nil {
		s.metrics.ExportsFailed.Inc()
		s.logger.Error().Err(err).Msg("workbook build failed")
		writeError(w, http.StatusInternalServerError, "failed to build export workbook")
		return
	}

	effectiveStart, effectiveEnd := s.searchSvc.YearWindow(req)
	filename := export.Filename(topic, effectiveStart, effectiveEnd)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn().Err(err).Msg("export response write interrupted")
	}
}

// getTrending handles GET /trending.
func (s *Server) getTrending(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		field = "computer-science"
	}

	s.metrics.TrendingRequests.Inc()

	result, err := s.searchSvc.Trending(r.Context(), field)
	if err != nil {
		s.logger.Error().Err(err).Str("field", field).Msg("trending aggregation failed")
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
