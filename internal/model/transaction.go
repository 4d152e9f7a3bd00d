package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RawLine is a single line of extracted document text. It only exists
// between the extractor and the statement parsers.
type RawLine struct {
	DocID string
	Text  string
	Page  int
	Index int
}

// RawTransaction is a candidate transaction as a statement parser saw it:
// date and amount are still unnormalized strings in whatever shape the
// source document used. Immutable once created.
type RawTransaction struct {
	Date        string
	Description string
	Amount      string
	Source      string
}

// Key returns the full-tuple identity of the raw transaction, used for
// deduplication and as the classification cache key.
func (r RawTransaction) Key() string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s", r.Date, r.Description, r.Amount, r.Source)
}

// Hash returns a stable hex digest of the raw tuple.
func (r RawTransaction) Hash() string {
	sum := sha256.Sum256([]byte(r.Key()))
	return fmt.Sprintf("%x", sum)
}

// Transaction is a canonical, classified transaction. The date is a real
// calendar date, the amount is a finite fixed-point decimal, and the
// category is a member of the closed set. Never mutated after creation;
// corrections require reprocessing.
type Transaction struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Category    Category
	Source      string
}

// NewTransaction builds a canonical transaction from unnormalized fields,
// rejecting records whose date or amount cannot be normalized. An invalid
// category is not grounds for rejection: financial records are never
// silently dropped, so it is coerced to Uncertain Expenses instead.
func NewTransaction(date, description, amount, category, source string) (Transaction, error) {
	parsedDate, err := ParseDate(date)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid transaction date: %w", err)
	}

	parsedAmount, err := NormalizeAmount(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid transaction amount: %w", err)
	}

	cat, ok := ParseCategory(category)
	if !ok {
		cat = CategoryUncertain
	}

	return Transaction{
		Date:        parsedDate,
		Amount:      parsedAmount,
		Description: description,
		Category:    cat,
		Source:      source,
	}, nil
}

// Key returns the full-tuple identity of the transaction. Amounts compare
// through their decimal string form, never through floats.
func (t Transaction) Key() string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s\x1f%s",
		FormatDate(t.Date), t.Amount.String(), t.Description, t.Category, t.Source)
}

// WeeklyBalance is a derived 7-day bucket summary, recomputed in full on
// every aggregation run.
type WeeklyBalance struct {
	WeekStart time.Time
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	Balance   decimal.Decimal
}

// AccountBalance is a user-supplied snapshot of an external account. It is
// merged into the balance summary, never derived from transactions.
type AccountBalance struct {
	Account string
	Amount  decimal.Decimal
}

// BalanceSummary holds the aggregate totals written to the Balance Summary
// sheet. Budgets derive from net income plus account balances.
type BalanceSummary struct {
	TotalIncome     decimal.Decimal
	TotalExpenses   decimal.Decimal
	NetIncome       decimal.Decimal
	TotalBalances   decimal.Decimal
	AvailableBudget decimal.Decimal
	DailyBudget     decimal.Decimal
	WeeklyBudget    decimal.Decimal
	YearlyBudget    decimal.Decimal
}
