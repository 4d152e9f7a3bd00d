package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

// pdfLines extracts the plain text of every page of a PDF, split into lines.
// The exact line breaking is the renderer's contract, not ours; parsers must
// match on field patterns, never on layout positions.
func (e *Extractor) pdfLines(path, docID string) ([]model.RawLine, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", common.ErrDocumentUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	var lines []model.RawLine
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("failed to extract page text",
				"file", docID,
				"page", pageNum,
				"error", err)
			continue
		}

		for i, raw := range strings.Split(text, "\n") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			lines = append(lines, model.RawLine{
				DocID: docID,
				Page:  pageNum,
				Index: i,
				Text:  raw,
			})
		}
	}

	return lines, nil
}
