package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper discovery service.
// Metrics are organized by subsystem: searches, summaries, citations,
// exports, and citation-index checks. All collectors are registered through
// promauto against the provided registerer.
type Metrics struct {
	// SearchesTotal counts search requests, labeled by sort mode.
	SearchesTotal *prometheus.CounterVec

	// SearchesFailed counts search requests that failed upstream.
	SearchesFailed prometheus.Counter

	// SearchDuration observes end-to-end search handling in seconds.
	SearchDuration prometheus.Histogram

	// PapersPerSearch observes the distribution of papers returned per search.
	PapersPerSearch prometheus.Histogram

	// AuthorResolutions counts author-name resolutions, labeled by outcome
	// (resolved, not_found, error).
	AuthorResolutions *prometheus.CounterVec

	// SummariesTotal counts summarization requests, labeled by provider.
	SummariesTotal *prometheus.CounterVec

	// SummariesFailed counts failed summarizations, labeled by provider and reason.
	SummariesFailed *prometheus.CounterVec

	// SummaryDuration observes summarization duration in seconds, labeled by provider.
	SummaryDuration *prometheus.HistogramVec

	// CitationsFormatted counts citation formatting operations, labeled by style.
	CitationsFormatted *prometheus.CounterVec

	// ExportsTotal counts spreadsheet export requests.
	ExportsTotal prometheus.Counter

	// ExportsFailed counts spreadsheet export requests that failed.
	ExportsFailed prometheus.Counter

	// ScopusChecks counts citation-index lookups, labeled by outcome
	// (indexed, not_indexed, error).
	ScopusChecks *prometheus.CounterVec

	// TrendingRequests counts trending-topic aggregation requests.
	TrendingRequests prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
// The namespace is used as a prefix for all metric names.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of search requests by sort mode",
		}, []string{"sort_by"}),
		SearchesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of search requests that failed upstream",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PapersPerSearch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_per_search",
			Help:      "Distribution of papers returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50},
		}),
		AuthorResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "author_resolutions_total",
			Help:      "Total number of author-name resolutions by outcome",
		}, []string{"outcome"}),
		SummariesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Total number of summarization requests by provider",
		}, []string{"provider"}),
		SummariesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_failed_total",
			Help:      "Total number of failed summarizations by provider and reason",
		}, []string{"provider", "reason"}),
		SummaryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Summarization duration in seconds by provider",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		CitationsFormatted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_formatted_total",
			Help:      "Total number of citation formatting operations by style",
		}, []string{"style"}),
		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of spreadsheet export requests",
		}),
		ExportsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_failed_total",
			Help:      "Total number of spreadsheet export requests that failed",
		}),
		ScopusChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scopus_checks_total",
			Help:      "Total number of citation-index lookups by outcome",
		}, []string{"outcome"}),
		TrendingRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trending_requests_total",
			Help:      "Total number of trending-topic aggregation requests",
		}),
	}
}
