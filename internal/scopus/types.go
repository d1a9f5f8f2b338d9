// Package scopus provides a client for the Scopus search API, used to
// cross-check whether a work is indexed in Scopus by its DOI.
//
// API keys are free from dev.elsevier.com.
package scopus

// SearchResponse represents the top-level Scopus search API response.
type SearchResponse struct {
	SearchResults SearchResults `json:"search-results"`
}

// SearchResults contains the search result metadata and entries.
type SearchResults struct {
	TotalResults string  `json:"opensearch:totalResults"`
	StartIndex   string  `json:"opensearch:startIndex"`
	ItemsPerPage string  `json:"opensearch:itemsPerPage"`
	Entries      []Entry `json:"entry"`
}

// Entry represents a single document in the Scopus search results.
type Entry struct {
	Identifier      string `json:"dc:identifier"` // "SCOPUS_ID:85012345678"
	EID             string `json:"eid"`
	DOI             string `json:"prism:doi"`
	Title           string `json:"dc:title"`
	PublicationName string `json:"prism:publicationName"`
	CoverDate       string `json:"prism:coverDate"`
	CitedByCount    string `json:"citedby-count"`
	Links           []Link `json:"link"`
}

// Link is a hyperlink attached to a Scopus entry. The entry's Scopus
// abstract page carries the ref value "scopus".
type Link struct {
	Ref  string `json:"@ref"`
	Href string `json:"@href"`
}

// IndexResult reports whether a DOI is indexed in Scopus.
type IndexResult struct {
	Indexed  bool   `json:"indexed"`
	ScopusID string `json:"scopus_id,omitempty"`
	URL      string `json:"scopus_url,omitempty"`
}
