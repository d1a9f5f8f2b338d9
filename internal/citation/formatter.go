// Package citation renders normalized paper records as citation strings.
package citation

import (
	"fmt"
	"strings"

	"github.com/scholarai/discovery-service/internal/domain"
)

// Style identifies a citation output format.
type Style string

// Supported citation styles.
const (
	StyleBibTeX Style = "bibtex"
	StyleAPA    Style = "apa"
)

// DefaultStyle is used when a request carries no explicit style.
const DefaultStyle = StyleBibTeX

// Format renders a single paper in the given style. An unsupported style
// yields a validation error.
func Format(paper domain.Paper, style Style) (string, error) {
	switch style {
	case StyleBibTeX:
		return formatBibTeX(paper), nil
	case StyleAPA:
		return formatAPA(paper), nil
	default:
		return "", domain.NewValidationError("format", fmt.Sprintf("unsupported format: %s", style))
	}
}

// FormatBatch renders every paper in the given style, joined by newlines.
// Papers that cannot be rendered are skipped rather than failing the
// whole batch.
func FormatBatch(papers []domain.Paper, style Style) (string, error) {
	if style != StyleBibTeX && style != StyleAPA {
		return "", domain.NewValidationError("format", fmt.Sprintf("unsupported format: %s", style))
	}
	citations := make([]string, 0, len(papers))
	for _, p := range papers {
		c, err := Format(p, style)
		if err != nil {
			continue
		}
		citations = append(citations, c)
	}
	return strings.Join(citations, "\n"), nil
}

// citableAuthors filters out empty names and the "+N more" sentinel the
// projection step appends to long author lists.
func citableAuthors(authors []domain.Author) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Name == "" || strings.Contains(a.Name, "more") {
			continue
		}
		names = append(names, a.Name)
	}
	return names
}

func formatBibTeX(paper domain.Paper) string {
	names := citableAuthors(paper.Authors)
	authorStr := strings.Join(names, " and ")

	key := bibtexKey(paper)

	year := ""
	if paper.Year != 0 {
		year = fmt.Sprintf("%d", paper.Year)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", key)
	fmt.Fprintf(&b, "  title = {%s},\n", paper.Title)
	fmt.Fprintf(&b, "  author = {%s},\n", authorStr)
	fmt.Fprintf(&b, "  journal = {%s},\n", paper.Journal)
	fmt.Fprintf(&b, "  year = {%s},\n", year)
	fmt.Fprintf(&b, "  doi = {%s},\n", paper.DOI)
	fmt.Fprintf(&b, "  publisher = {%s}\n", paper.Publisher)
	b.WriteString("}\n")
	return b.String()
}

// bibtexKey derives the entry key from the last DOI path segment, falling
// back to the first 20 title characters with spaces replaced by
// underscores.
func bibtexKey(paper domain.Paper) string {
	if paper.DOI != "" {
		parts := strings.Split(paper.DOI, "/")
		return parts[len(parts)-1]
	}
	title := paper.Title
	if title == "" {
		title = "unknown"
	}
	if runes := []rune(title); len(runes) > 20 {
		title = string(runes[:20])
	}
	return strings.ReplaceAll(title, " ", "_")
}

func formatAPA(paper domain.Paper) string {
	names := citableAuthors(paper.Authors)

	var authorStr string
	switch len(names) {
	case 0:
		authorStr = "Unknown"
	case 1:
		authorStr = names[0]
	case 2:
		authorStr = fmt.Sprintf("%s & %s", names[0], names[1])
	default:
		authorStr = strings.Join(names[:len(names)-1], ", ") + fmt.Sprintf(", & %s", names[len(names)-1])
	}

	year := "n.d."
	if paper.Year != 0 {
		year = fmt.Sprintf("%d", paper.Year)
	}

	citation := fmt.Sprintf("%s (%s). %s. *%s*.", authorStr, year, paper.Title, paper.Journal)
	if paper.DOI != "" {
		citation += " " + paper.DOI
	}
	return citation
}

// ParseStyle maps a request string to a Style, defaulting to BibTeX for
// the empty string. Unknown values are passed through so Format can
// reject them with the offending name in the error.
func ParseStyle(s string) Style {
	if s == "" {
		return DefaultStyle
	}
	return Style(s)
}
