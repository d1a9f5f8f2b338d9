// Package domain defines the core types and error taxonomy for the
// paper discovery service.
package domain

// Paper is a normalized scholarly work record built from a raw provider
// item. It is constructed once per request and never mutated afterwards.
type Paper struct {
	// ID is the provider identifier (OpenAlex work URL).
	ID string `json:"id"`
	// Title is the work title.
	Title string `json:"title"`
	// Year is the publication year, 0 when unknown.
	Year int `json:"year"`
	// Authors is the author list, capped with a "+N more" sentinel entry
	// when the raw item has more authors than the cap.
	Authors []Author `json:"authors"`
	// Journal is the venue display name, "Unknown Journal" when absent.
	Journal string `json:"journal"`
	// Publisher is the host organization, "Unknown Publisher" when absent.
	Publisher string `json:"publisher"`
	// Citations is the citation count reported by the provider.
	Citations int `json:"citations"`
	// OpenAccess reports whether an open-access copy exists.
	OpenAccess bool `json:"open_access"`
	// OAURL is the open-access URL when available.
	OAURL string `json:"oa_url"`
	// DOI is the DOI URL, may be empty.
	DOI string `json:"doi"`
	// Abstract is the full reconstructed abstract text.
	Abstract string `json:"abstract"`
	// Summary is a sentence-aligned snippet of the abstract, or a fixed
	// placeholder when no abstract is available.
	Summary string `json:"summary"`
	// Concepts are provider concepts above the confidence threshold.
	Concepts []Concept `json:"concepts"`
	// Type is the work type (article, review, book-chapter, ...).
	Type string `json:"type"`
	// Score is the hybrid relevance score rounded to 4 decimals.
	Score float64 `json:"score"`
	// ScopusSearchURL is a title-search deep link into Scopus.
	ScopusSearchURL string `json:"scopus_search_url,omitempty"`
}

// Author is a single author entry on a normalized paper.
type Author struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	ORCID string `json:"orcid"`
}

// Concept is a provider-assigned topic with a confidence score.
type Concept struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SortMode selects the ordering of search results.
type SortMode string

// Supported sort modes. Only SortRelevance triggers local re-ranking by
// the hybrid score; the other modes keep the provider's native order.
const (
	SortRelevance SortMode = "relevance"
	SortCitations SortMode = "citations"
	SortYearDesc  SortMode = "year_desc"
	SortYearAsc   SortMode = "year_asc"
)

// ParseSortMode maps a request string to a SortMode, defaulting to
// SortRelevance for empty or unknown values.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortCitations:
		return SortCitations
	case SortYearDesc:
		return SortYearDesc
	case SortYearAsc:
		return SortYearAsc
	default:
		return SortRelevance
	}
}
