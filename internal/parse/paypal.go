package parse

import (
	"regexp"
	"strings"

	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
)

const paypalSource = "PayPal"

// transaction history rows: date, description, gross, fee, net.
var historyRowRe = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2,4})\s+(.+?)\s+([-.\d,]+)\s+([-.\d,]+)\s+([-.\d,]+)$`)

// statement rows that lead with a long-year date; the last field is the total.
var dateLedRowRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}\s`)

// PayPalHistoryParser handles PayPal statement exports containing a
// "Transaction History" section.
type PayPalHistoryParser struct{}

// Name implements Parser.
func (p *PayPalHistoryParser) Name() string { return "paypal-history" }

// TryParse implements Parser. It claims documents either named like a
// PayPal export or carrying the Transaction History content marker.
func (p *PayPalHistoryParser) TryParse(doc *extract.Document) ([]model.RawTransaction, bool) {
	text := doc.Text()
	if !strings.Contains(strings.ToLower(doc.ID), "paypal") &&
		!strings.Contains(text, "Transaction History") {
		return nil, false
	}

	inHistory := !strings.Contains(text, "Transaction History")
	var txns []model.RawTransaction
	for _, line := range doc.Lines {
		if strings.Contains(line.Text, "Transaction History") {
			inHistory = true
			continue
		}

		trimmed := strings.TrimSpace(line.Text)
		if m := historyRowRe.FindStringSubmatch(trimmed); inHistory && m != nil {
			description := strings.TrimSpace(strings.SplitN(m[2], "ID:", 2)[0])
			txns = append(txns, model.RawTransaction{
				Date:        m[1],
				Description: description,
				Amount:      m[5], // net, after fees
				Source:      paypalSource,
			})
			continue
		}

		// Fallback row shape: date, free-form description, total last.
		if dateLedRowRe.MatchString(trimmed) {
			parts := strings.Fields(trimmed)
			if len(parts) < 3 {
				continue
			}
			txns = append(txns, model.RawTransaction{
				Date:        parts[0],
				Description: strings.Join(parts[1:len(parts)-2], " "),
				Amount:      parts[len(parts)-1],
				Source:      paypalSource,
			})
		}
	}

	return txns, true
}

// account activity rows: date, description, ISO currency, gross amount, an
// opaque transaction id, fee, and total, all run together the way the PDF
// text layer emits them.
var activityRowRe = regexp.MustCompile(
	`(\d{2}/\d{2}/\d{4})\s+(.*?)\s+([A-Z]{3})(-?\d+\.\d{2})\s+USDID:\s+.*?USD(-?\d+\.\d{2})(-?\d+\.\d{2})`)

// PayPalActivityParser handles the PayPal account-activity layout, where
// each row carries currency, gross, fee, and total columns.
type PayPalActivityParser struct{}

// Name implements Parser.
func (p *PayPalActivityParser) Name() string { return "paypal-activity" }

// TryParse implements Parser. The row regex itself is the discriminator:
// the layout is distinctive enough that one matching line claims the file.
func (p *PayPalActivityParser) TryParse(doc *extract.Document) ([]model.RawTransaction, bool) {
	var txns []model.RawTransaction
	for _, line := range doc.Lines {
		m := activityRowRe.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}
		txns = append(txns, model.RawTransaction{
			Date:        m[1],
			Description: strings.TrimSpace(m[2]),
			Amount:      m[6], // total, after fees
			Source:      paypalSource,
		})
	}

	if len(txns) == 0 {
		return nil, false
	}
	return txns, true
}
