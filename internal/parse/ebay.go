package parse

import (
	"strings"

	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
)

const (
	ebaySource      = "eBay"
	orderDateMarker = "Order date:"
	orderTotalField = "Order total:"
)

// EBayParser handles eBay order-history exports. Orders are delimited by
// "Order date:" markers; the order total line carries the amount.
type EBayParser struct{}

// Name implements Parser.
func (p *EBayParser) Name() string { return "ebay-orders" }

// TryParse implements Parser.
func (p *EBayParser) TryParse(doc *extract.Document) ([]model.RawTransaction, bool) {
	text := doc.Text()
	if !strings.Contains(strings.ToLower(doc.ID), "ebay") &&
		!strings.Contains(text, orderDateMarker) {
		return nil, false
	}

	orders := strings.Split(text, orderDateMarker)
	if len(orders) < 2 {
		return nil, true
	}

	var txns []model.RawTransaction
	for _, order := range orders[1:] {
		lines := strings.Split(order, "\n")

		// The date leads the order block; a bullet separates it from
		// the order number.
		date := strings.TrimSpace(strings.SplitN(lines[0], "•", 2)[0])

		var total string
		for _, line := range lines {
			if !strings.Contains(line, orderTotalField) {
				continue
			}
			total = strings.SplitN(line, orderTotalField, 2)[1]
			total = strings.ReplaceAll(total, "US $", "")
			total = strings.TrimSpace(strings.SplitN(total, "•", 2)[0])
			break
		}
		if date == "" || total == "" {
			continue
		}

		var description string
		if len(lines) > 2 {
			description = strings.TrimSpace(strings.Join(lines[2:], " "))
		}

		txns = append(txns, model.RawTransaction{
			Date:        date,
			Description: description,
			Amount:      "$" + total,
			Source:      ebaySource,
		})
	}

	return txns, true
}
