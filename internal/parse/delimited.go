package parse

import (
	"encoding/csv"
	"strings"

	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
)

const statementSource = "Statement"

// DelimitedParser handles `date,description,amount` ledgers: CSV files and
// the flattened rows the extractor produces from spreadsheets.
type DelimitedParser struct{}

// Name implements Parser.
func (p *DelimitedParser) Name() string { return "delimited" }

// TryParse implements Parser. A document is claimed when at least one line
// splits into exactly three fields with a parseable date up front; header
// rows and stray text fail that test and are skipped.
func (p *DelimitedParser) TryParse(doc *extract.Document) ([]model.RawTransaction, bool) {
	var txns []model.RawTransaction
	for _, line := range doc.Lines {
		record, err := csv.NewReader(strings.NewReader(line.Text)).Read()
		if err != nil || len(record) != 3 {
			continue
		}

		date := strings.TrimSpace(record[0])
		if _, err := model.ParseDate(date); err != nil {
			continue
		}

		txns = append(txns, model.RawTransaction{
			Date:        date,
			Description: strings.TrimSpace(record[1]),
			Amount:      strings.TrimSpace(record[2]),
			Source:      statementSource,
		})
	}

	if len(txns) == 0 {
		return nil, false
	}
	return txns, true
}
