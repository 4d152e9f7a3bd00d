package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// buildPrompt renders the categorization instruction for one batch of raw
// transactions. The reply contract is one JSON object per transaction; the
// gateway's extraction tolerates surrounding prose and malformed spans.
func buildPrompt(batch []model.RawTransaction) (string, error) {
	type promptRecord struct {
		Date        string `json:"Date"`
		Description string `json:"Description"`
		Amount      string `json:"Amount"`
		Source      string `json:"Source"`
	}

	records := make([]promptRecord, len(batch))
	for i, r := range batch {
		records[i] = promptRecord{
			Date:        r.Date,
			Description: r.Description,
			Amount:      r.Amount,
			Source:      r.Source,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch: %w", err)
	}

	names := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		names = append(names, string(c))
	}

	var sb strings.Builder
	sb.WriteString("Categorize the following financial transactions.\n")
	sb.WriteString("For every transaction, return one JSON object with exactly these keys:\n")
	sb.WriteString(`{"Date": "MM-DD-YYYY", "Description": "...", "Amount": "...", "Category": "...", "Source": "..."}` + "\n")
	sb.WriteString("Category must be one of: ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(".\n")
	sb.WriteString("Never return null for any field. Return a JSON object for every transaction; do not skip any. Do not return code.\n\n")
	sb.WriteString("Transactions:\n")
	sb.Write(data)

	return sb.String(), nil
}
