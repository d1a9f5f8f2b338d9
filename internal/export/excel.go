// Package export renders paper batches as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/scholarai/discovery-service/internal/domain"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxAbstractChars truncates abstracts before writing them to a cell.
const maxAbstractChars = 500

// maxTopicChars caps the topic portion of the generated filename.
const maxTopicChars = 30

var columnHeaders = []interface{}{
	"Title", "Authors", "Year", "Journal", "Publisher",
	"Citations", "Open Access", "DOI", "Type", "Abstract",
}

// Write renders papers as a single-sheet workbook and writes it to w.
// Authors are joined with "; ", excluding the "+N more" sentinel, and
// abstracts are truncated to 500 characters.
func Write(w io.Writer, papers []domain.Paper) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &columnHeaders); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, p := range papers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute row cell: %w", err)
		}
		row := []interface{}{
			p.Title,
			joinAuthors(p.Authors),
			p.Year,
			p.Journal,
			p.Publisher,
			p.Citations,
			p.OpenAccess,
			p.DOI,
			p.Type,
			truncate(p.Abstract, maxAbstractChars),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename builds the download filename for an export of the given topic
// and year window.
func Filename(topic string, startYear, endYear int) string {
	safe := strings.ReplaceAll(topic, " ", "_")
	if runes := []rune(safe); len(runes) > maxTopicChars {
		safe = string(runes[:maxTopicChars])
	}
	return fmt.Sprintf("research_%s_%d_%d.xlsx", safe, startYear, endYear)
}

func joinAuthors(authors []domain.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Name == "" || strings.Contains(a.Name, "more") {
			continue
		}
		names = append(names, a.Name)
	}
	return strings.Join(names, "; ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
