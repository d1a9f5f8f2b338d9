package ranking

import (
	"fmt"
	"math"

	"github.com/scholarai/discovery-service/internal/domain"
	"github.com/scholarai/discovery-service/internal/openalex"
	"github.com/scholarai/discovery-service/internal/scopus"
)

const (
	// MaxAuthors caps the projected author list; raw items with more
	// authors get a "+N more" sentinel entry appended.
	MaxAuthors = 5

	// MaxConcepts caps the projected concept list.
	MaxConcepts = 5

	// ConceptScoreThreshold excludes low-confidence concepts.
	ConceptScoreThreshold = 0.3

	// UnknownJournal is the default when the raw item carries no venue.
	UnknownJournal = "Unknown Journal"

	// UnknownPublisher is the default when the raw item carries no host
	// organization.
	UnknownPublisher = "Unknown Publisher"
)

// BatchContext carries the batch-wide values every projection in one
// request shares: the requested year window and the page-relative maximum
// citation count.
type BatchContext struct {
	StartYear    int
	EndYear      int
	MaxCitations int
}

// NewBatchContext computes the batch context for one page of works.
// MaxCitations is the maximum citation count observed on this page only
// (not across all matching results), floored to 1 so citation
// normalization never divides by zero.
func NewBatchContext(works []openalex.Work, startYear, endYear int) BatchContext {
	maxCitations := 0
	for i := range works {
		if works[i].CitedByCount > maxCitations {
			maxCitations = works[i].CitedByCount
		}
	}
	if maxCitations == 0 {
		maxCitations = 1
	}
	return BatchContext{
		StartYear:    startYear,
		EndYear:      endYear,
		MaxCitations: maxCitations,
	}
}

// ProjectWork maps a raw provider work into an immutable normalized paper
// record, computing its hybrid score against the batch context. Missing
// nested objects degrade to the documented defaults; projection never
// fails on a single malformed record.
func ProjectWork(work *openalex.Work, bc BatchContext) domain.Paper {
	citationScore := CitationScore(work.CitedByCount, bc.MaxCitations)
	recencyScore := RecencyScore(work.PublicationYear, bc.StartYear, bc.EndYear)
	finalScore := HybridScore(work.RelevanceScore, citationScore, recencyScore)

	abstract := ReconstructAbstract(work.AbstractInvertedIndex)
	summary := Snippet(abstract, DefaultSnippetChars)
	if summary == "" {
		summary = NoAbstractPlaceholder
	}

	journal, publisher := journalInfo(work)

	var openAccess bool
	var oaURL string
	if work.OpenAccess != nil {
		openAccess = work.OpenAccess.IsOA
		oaURL = work.OpenAccess.OAURL
	}

	var scopusURL string
	if work.Title != "" {
		scopusURL = scopus.SearchURL(work.Title)
	}

	return domain.Paper{
		ID:              work.ID,
		Title:           work.Title,
		Year:            work.PublicationYear,
		Authors:         extractAuthors(work.Authorships, MaxAuthors),
		Journal:         journal,
		Publisher:       publisher,
		Citations:       work.CitedByCount,
		OpenAccess:      openAccess,
		OAURL:           oaURL,
		DOI:             work.DOI,
		Abstract:        abstract,
		Summary:         summary,
		Concepts:        extractConcepts(work.Concepts, MaxConcepts),
		Type:            work.Type,
		Score:           RoundScore(finalScore),
		ScopusSearchURL: scopusURL,
	}
}

// ProjectPage projects a whole page of works against a shared batch
// context. An empty page yields an empty slice with no scores computed.
func ProjectPage(works []openalex.Work, startYear, endYear int) []domain.Paper {
	if len(works) == 0 {
		return nil
	}
	bc := NewBatchContext(works, startYear, endYear)
	papers := make([]domain.Paper, 0, len(works))
	for i := range works {
		papers = append(papers, ProjectWork(&works[i], bc))
	}
	return papers
}

// journalInfo extracts venue and publisher names, treating any missing
// nested object as empty rather than failing.
func journalInfo(work *openalex.Work) (journal, publisher string) {
	journal = UnknownJournal
	publisher = UnknownPublisher
	if work.PrimaryLocation == nil || work.PrimaryLocation.Source == nil {
		return journal, publisher
	}
	source := work.PrimaryLocation.Source
	if source.DisplayName != "" {
		journal = source.DisplayName
	}
	if source.HostOrganizationName != "" {
		publisher = source.HostOrganizationName
	}
	return journal, publisher
}

// extractAuthors projects up to maxAuthors named authors. When the raw
// item has more, a synthetic "+N more" entry with empty id/orcid is
// appended, so the projected list never exceeds maxAuthors+1 entries.
func extractAuthors(authorships []openalex.Authorship, maxAuthors int) []domain.Author {
	authors := make([]domain.Author, 0, maxAuthors+1)
	limit := len(authorships)
	if limit > maxAuthors {
		limit = maxAuthors
	}
	for _, a := range authorships[:limit] {
		if a.Author.DisplayName == "" {
			continue
		}
		authors = append(authors, domain.Author{
			Name:  a.Author.DisplayName,
			ID:    a.Author.ID,
			ORCID: a.Author.Orcid,
		})
	}
	if len(authorships) > maxAuthors {
		authors = append(authors, domain.Author{
			Name: fmt.Sprintf("+%d more", len(authorships)-maxAuthors),
		})
	}
	return authors
}

// extractConcepts keeps concepts whose confidence exceeds the threshold,
// capped at maxConcepts, with scores rounded to 2 decimals.
func extractConcepts(concepts []openalex.WorkConcept, maxConcepts int) []domain.Concept {
	limit := len(concepts)
	if limit > maxConcepts {
		limit = maxConcepts
	}
	out := make([]domain.Concept, 0, limit)
	for _, c := range concepts[:limit] {
		if c.Score <= ConceptScoreThreshold {
			continue
		}
		out = append(out, domain.Concept{
			Name:  c.DisplayName,
			Score: math.Round(c.Score*100) / 100,
		})
	}
	return out
}
