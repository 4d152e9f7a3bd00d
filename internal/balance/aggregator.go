// Package balance derives the weekly buckets and the balance summary from
// the ledger's category sheets. Aggregation is recompute-in-full: derived
// artifacts are replaced wholesale on every run, never incrementally patched.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/service"
)

var (
	daysPerYear  = decimal.NewFromInt(365)
	weeksPerYear = decimal.NewFromInt(52)
)

// Aggregator reads the ledger and computes the derived report artifacts.
type Aggregator struct {
	store  service.LedgerStore
	logger *slog.Logger
}

// New creates an aggregator over the given ledger store.
func New(store service.LedgerStore, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: store, logger: logger}
}

// Report loads the income sheet and every expense sheet, then computes the
// weekly buckets and the balance summary. Both income and expense data must
// be present; otherwise the run fails with ErrInsufficientData and nothing
// is written.
func (a *Aggregator) Report(ctx context.Context, balances []model.AccountBalance) ([]model.WeeklyBalance, *model.BalanceSummary, error) {
	income, err := a.store.Category(ctx, model.CategoryIncome)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load income: %w", err)
	}

	var expenses []model.Transaction
	for _, category := range model.Categories() {
		if !category.IsExpense() {
			continue
		}
		txns, err := a.store.Category(ctx, category)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", category, err)
		}
		expenses = append(expenses, txns...)
	}

	if len(income) == 0 || len(expenses) == 0 {
		return nil, nil, fmt.Errorf("%w: income rows=%d, expense rows=%d",
			common.ErrInsufficientData, len(income), len(expenses))
	}

	weekly := WeeklyBuckets(income, expenses)
	summary := Summarize(income, expenses, balances)

	a.logger.Info("aggregated balances",
		"income_rows", len(income),
		"expense_rows", len(expenses),
		"weeks", len(weekly))

	return weekly, summary, nil
}

// WeeklyBuckets partitions the transactions into consecutive 7-day buckets.
// The first bucket starts on the earliest transaction date across both
// slices, and buckets continue until the latest date is covered. Every
// bucket in the range is emitted, including weeks with no activity.
func WeeklyBuckets(income, expenses []model.Transaction) []model.WeeklyBalance {
	earliest, latest, ok := dateRange(income, expenses)
	if !ok {
		return nil
	}

	var weeks []model.WeeklyBalance
	for start := earliest; !start.After(latest); start = start.AddDate(0, 0, 7) {
		end := start.AddDate(0, 0, 7)

		in := sumWithin(income, start, end, false)
		out := sumWithin(expenses, start, end, true)

		weeks = append(weeks, model.WeeklyBalance{
			WeekStart: start,
			Income:    in,
			Expenses:  out,
			Balance:   in.Sub(out),
		})
	}
	return weeks
}

// Summarize computes the aggregate totals and budgets. The available budget
// is net income plus the user-supplied account balances; the daily and
// weekly budgets spread it over a year.
func Summarize(income, expenses []model.Transaction, balances []model.AccountBalance) *model.BalanceSummary {
	var totalIncome decimal.Decimal
	for _, tx := range income {
		totalIncome = totalIncome.Add(tx.Amount)
	}

	var totalExpenses decimal.Decimal
	for _, tx := range expenses {
		totalExpenses = totalExpenses.Add(tx.Amount.Abs())
	}

	var totalBalances decimal.Decimal
	for _, b := range balances {
		totalBalances = totalBalances.Add(b.Amount)
	}

	net := totalIncome.Sub(totalExpenses)
	available := net.Add(totalBalances)

	return &model.BalanceSummary{
		TotalIncome:     totalIncome,
		TotalExpenses:   totalExpenses,
		NetIncome:       net,
		TotalBalances:   totalBalances,
		AvailableBudget: available,
		DailyBudget:     available.Div(daysPerYear).Round(2),
		WeeklyBudget:    available.Div(weeksPerYear).Round(2),
		YearlyBudget:    available.Round(2),
	}
}

// dateRange finds the earliest and latest transaction dates across both
// slices. ok is false when there are no transactions at all.
func dateRange(income, expenses []model.Transaction) (earliest, latest time.Time, ok bool) {
	for _, txns := range [][]model.Transaction{income, expenses} {
		for _, tx := range txns {
			if !ok {
				earliest, latest, ok = tx.Date, tx.Date, true
				continue
			}
			if tx.Date.Before(earliest) {
				earliest = tx.Date
			}
			if tx.Date.After(latest) {
				latest = tx.Date
			}
		}
	}
	return earliest, latest, ok
}

// sumWithin totals the amounts of transactions dated in [start, end).
// Expense amounts are taken by absolute value so statements that record
// debits as negatives aggregate the same as ones that record them positive.
func sumWithin(txns []model.Transaction, start, end time.Time, abs bool) decimal.Decimal {
	var total decimal.Decimal
	for _, tx := range txns {
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		amount := tx.Amount
		if abs {
			amount = amount.Abs()
		}
		total = total.Add(amount)
	}
	return total
}
