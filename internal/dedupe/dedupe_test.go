package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallyhq/tally/internal/model"
)

func TestRawTransactions(t *testing.T) {
	a := model.RawTransaction{Date: "2024-01-01", Description: "Coffee", Amount: "5.00", Source: "Bank"}
	b := model.RawTransaction{Date: "2024-01-01", Description: "Coffee", Amount: "5.00", Source: "Bank"}
	c := model.RawTransaction{Date: "2024-01-02", Description: "Coffee", Amount: "5.00", Source: "Bank"}

	got := RawTransactions([]model.RawTransaction{a, b, c, a})
	assert.Len(t, got, 2)
	assert.Contains(t, got, a)
	assert.Contains(t, got, c)
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := []model.RawTransaction{
		{Date: "2024-01-01", Description: "Coffee", Amount: "5.00", Source: "Bank"},
		{Date: "2024-01-01", Description: "Coffee", Amount: "5.00", Source: "Bank"},
		{Date: "2024-01-03", Description: "Books", Amount: "20.00", Source: "eBay"},
	}

	once := RawTransactions(in)
	twice := RawTransactions(once)

	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(in))
}

func TestRows(t *testing.T) {
	rows := [][]string{
		{"2024-01-01", "5", "Coffee", "Bank"},
		{"2024-01-01", "5", "Coffee", "Bank"},
		{"2024-01-01", "5", "Coffee", "eBay"},
	}
	got := Rows(rows)
	assert.Len(t, got, 2)

	// Identical again on a second pass.
	assert.Equal(t, got, Rows(got))
}

func TestRowsDistinguishesCellBoundaries(t *testing.T) {
	// "ab","c" and "a","bc" are different tuples even though their
	// concatenation is equal.
	rows := [][]string{
		{"ab", "c"},
		{"a", "bc"},
	}
	assert.Len(t, Rows(rows), 2)
}

func TestEmptyInput(t *testing.T) {
	assert.Nil(t, RawTransactions(nil))
	assert.Nil(t, Transactions(nil))
	assert.Nil(t, Rows(nil))
}
