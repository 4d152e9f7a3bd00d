// Package model defines the core domain types shared across the pipeline.
package model

import "strings"

// Category is one of the closed set of budget classifications assigned to
// every transaction. The set is fixed; anything the classifier returns
// outside of it is coerced to CategoryUncertain.
type Category string

const (
	CategoryIncome        Category = "Income"
	CategoryExpenses      Category = "Expenses"
	CategoryBusiness      Category = "Business Expenses"
	CategoryTaxDeductible Category = "Tax Deductible Expenses"
	CategorySubscriptions Category = "Subscriptions"
	CategoryUncertain     Category = "Uncertain Expenses"
)

// Categories returns all categories in their canonical sheet order.
func Categories() []Category {
	return []Category{
		CategoryIncome,
		CategoryExpenses,
		CategoryBusiness,
		CategoryTaxDeductible,
		CategorySubscriptions,
		CategoryUncertain,
	}
}

// ParseCategory matches a category string case-insensitively against the
// closed set. The second return value reports whether the input was valid.
func ParseCategory(s string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if strings.ToLower(string(c)) == normalized {
			return c, true
		}
	}
	return CategoryUncertain, false
}

// Valid reports whether c is a member of the closed category set, spelled
// exactly as the sheet names spell it.
func (c Category) Valid() bool {
	parsed, ok := ParseCategory(string(c))
	return ok && parsed == c
}

// IsExpense reports whether c counts toward expense totals. Every category
// except Income does.
func (c Category) IsExpense() bool {
	return c != CategoryIncome
}

func (c Category) String() string {
	return string(c)
}
