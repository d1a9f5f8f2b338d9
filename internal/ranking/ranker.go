package ranking

import (
	"math"
	"sort"

	"github.com/scholarai/discovery-service/internal/domain"
)

// Fixed weights for the hybrid score.
const (
	// WeightRelevance weights the provider-supplied relevance score.
	WeightRelevance = 0.5
	// WeightCitations weights the batch-normalized citation score.
	WeightCitations = 0.3
	// WeightRecency weights the window-normalized recency score.
	WeightRecency = 0.2
)

// HybridScore combines the three component scores into one ordering key.
func HybridScore(relevance, citationScore, recencyScore float64) float64 {
	return relevance*WeightRelevance + citationScore*WeightCitations + recencyScore*WeightRecency
}

// RoundScore rounds a score to 4 decimal places for display and comparison.
func RoundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}

// Rank orders papers according to the requested sort mode. Only
// SortRelevance triggers a local re-sort by the hybrid score, descending
// and stable with respect to the original provider order on ties. All
// other modes rely on the provider's server-side ordering and leave the
// slice untouched; their hybrid scores remain attached but unused.
func Rank(papers []domain.Paper, mode domain.SortMode) {
	if mode != domain.SortRelevance {
		return
	}
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Score > papers[j].Score
	})
}
