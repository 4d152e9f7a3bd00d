package parse

import (
	"regexp"
	"strings"

	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
)

// generic "date description amount" rows, whitespace separated. The date
// may use any accepted layout; the amount may carry currency symbols,
// separators, and a leading or trailing sign.
var genericRowRe = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2}|\d{2}[/-]\d{2}[/-]\d{2,4})\s+(.+?)\s+(-?\$?[\d,]+(?:\.\d+)?-?)$`)

// GenericParser is the fallback format: one transaction per line, date
// first, amount last, description in between. It must stay last in the
// registry so the named formats get first claim.
type GenericParser struct{}

// Name implements Parser.
func (p *GenericParser) Name() string { return "generic" }

// TryParse implements Parser.
func (p *GenericParser) TryParse(doc *extract.Document) ([]model.RawTransaction, bool) {
	var txns []model.RawTransaction
	for _, line := range doc.Lines {
		m := genericRowRe.FindStringSubmatch(strings.TrimSpace(line.Text))
		if m == nil {
			continue
		}
		if _, err := model.ParseDate(m[1]); err != nil {
			continue
		}
		txns = append(txns, model.RawTransaction{
			Date:        m[1],
			Description: strings.TrimSpace(m[2]),
			Amount:      m[3],
			Source:      statementSource,
		})
	}

	if len(txns) == 0 {
		return nil, false
	}
	return txns, true
}
