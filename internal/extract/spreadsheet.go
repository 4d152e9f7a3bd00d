package extract

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

// spreadsheetLines flattens every sheet of an XLSX workbook into CSV text
// lines so the delimited-statement parser can treat spreadsheet exports the
// same as CSV ledgers. Cells are CSV-quoted, so commas inside a cell
// survive the round trip. Header rows are kept; the parsers skip lines
// whose first field is not a date.
func (e *Extractor) spreadsheetLines(path, docID string) ([]model.RawLine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open spreadsheet: %v", common.ErrDocumentUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	var lines []model.RawLine
	for sheetNum, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			e.logger.Warn("failed to read sheet",
				"file", docID,
				"sheet", sheet,
				"error", err)
			continue
		}

		for i, row := range rows {
			if blankRow(row) {
				continue
			}
			lines = append(lines, model.RawLine{
				DocID: docID,
				Page:  sheetNum + 1,
				Index: i,
				Text:  csvLine(row),
			})
		}
	}

	return lines, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// csvLine renders one row as a single CSV record without the trailing
// newline.
func csvLine(row []string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(row)
	w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}
