package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Category
		wantOK bool
	}{
		{name: "exact", input: "Income", want: CategoryIncome, wantOK: true},
		{name: "lowercase", input: "business expenses", want: CategoryBusiness, wantOK: true},
		{name: "whitespace", input: "  Subscriptions  ", want: CategorySubscriptions, wantOK: true},
		{name: "unknown coerces to uncertain", input: "Groceries", want: CategoryUncertain, wantOK: false},
		{name: "empty", input: "", want: CategoryUncertain, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestCategoryIsExpense(t *testing.T) {
	for _, c := range Categories() {
		if c == CategoryIncome {
			assert.False(t, c.IsExpense())
		} else {
			assert.True(t, c.IsExpense(), "category %s", c)
		}
	}
}

func TestNewTransactionValidation(t *testing.T) {
	tx, err := NewTransaction("2024-01-15", "Coffee", "$5.00", "Expenses", "Bank")
	assert.NoError(t, err)
	assert.Equal(t, CategoryExpenses, tx.Category)
	assert.Equal(t, "5", tx.Amount.String())

	// Unknown category is coerced, not rejected.
	tx, err = NewTransaction("2024-01-15", "Coffee", "5.00", "Snacks", "Bank")
	assert.NoError(t, err)
	assert.Equal(t, CategoryUncertain, tx.Category)

	// Bad date and bad amount are rejected.
	_, err = NewTransaction("someday", "Coffee", "5.00", "Expenses", "Bank")
	assert.Error(t, err)
	_, err = NewTransaction("2024-01-15", "Coffee", "n/a", "Expenses", "Bank")
	assert.Error(t, err)
}
