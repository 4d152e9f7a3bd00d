package balance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

// memoryStore is an in-memory LedgerStore for aggregation tests.
type memoryStore struct {
	sheets map[model.Category][]model.Transaction
}

func (m *memoryStore) Append(_ context.Context, txns []model.Transaction) error {
	if m.sheets == nil {
		m.sheets = make(map[model.Category][]model.Transaction)
	}
	for _, tx := range txns {
		m.sheets[tx.Category] = append(m.sheets[tx.Category], tx)
	}
	return nil
}

func (m *memoryStore) Category(_ context.Context, c model.Category) ([]model.Transaction, error) {
	return m.sheets[c], nil
}

func (m *memoryStore) WriteReports(context.Context, []model.WeeklyBalance, *model.BalanceSummary, []model.AccountBalance) error {
	return nil
}

func (m *memoryStore) Save(context.Context) error { return nil }
func (m *memoryStore) Close() error               { return nil }

func mustTxn(t *testing.T, date, amount, category string) model.Transaction {
	t.Helper()
	tx, err := model.NewTransaction(date, "txn", amount, category, "Bank")
	require.NoError(t, err)
	return tx
}

func TestWeeklyBucketsSingleWeek(t *testing.T) {
	income := []model.Transaction{mustTxn(t, "2024-01-01", "100.00", "Income")}
	expenses := []model.Transaction{mustTxn(t, "2024-01-03", "40.00", "Expenses")}

	weeks := WeeklyBuckets(income, expenses)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2024-01-01", model.FormatDate(weeks[0].WeekStart))
	assert.Equal(t, "100", weeks[0].Income.String())
	assert.Equal(t, "40", weeks[0].Expenses.String())
	assert.Equal(t, "60", weeks[0].Balance.String())
}

func TestWeeklyBucketsSpansGaps(t *testing.T) {
	income := []model.Transaction{
		mustTxn(t, "2024-01-01", "100.00", "Income"),
		mustTxn(t, "2024-01-20", "50.00", "Income"),
	}
	expenses := []model.Transaction{
		mustTxn(t, "2024-01-08", "30.00", "Expenses"),
	}

	weeks := WeeklyBuckets(income, expenses)
	require.Len(t, weeks, 3)

	assert.Equal(t, "2024-01-01", model.FormatDate(weeks[0].WeekStart))
	assert.Equal(t, "100", weeks[0].Income.String())
	assert.Equal(t, "0", weeks[0].Expenses.String())

	assert.Equal(t, "2024-01-08", model.FormatDate(weeks[1].WeekStart))
	assert.Equal(t, "30", weeks[1].Expenses.String())
	assert.Equal(t, "-30", weeks[1].Balance.String())

	assert.Equal(t, "2024-01-15", model.FormatDate(weeks[2].WeekStart))
	assert.Equal(t, "50", weeks[2].Income.String())
}

func TestWeeklyBucketsNegativeExpensesAggregateAbsolute(t *testing.T) {
	income := []model.Transaction{mustTxn(t, "2024-01-01", "100.00", "Income")}
	expenses := []model.Transaction{
		mustTxn(t, "2024-01-02", "-25.00", "Expenses"),
		mustTxn(t, "2024-01-03", "25.00", "Expenses"),
	}

	weeks := WeeklyBuckets(income, expenses)
	require.Len(t, weeks, 1)
	assert.Equal(t, "50", weeks[0].Expenses.String())
	assert.Equal(t, "50", weeks[0].Balance.String())
}

func TestWeeklyBucketsEmpty(t *testing.T) {
	assert.Nil(t, WeeklyBuckets(nil, nil))
}

func TestSummarize(t *testing.T) {
	income := []model.Transaction{mustTxn(t, "2024-01-01", "100.00", "Income")}
	expenses := []model.Transaction{mustTxn(t, "2024-01-03", "40.00", "Expenses")}
	balances := []model.AccountBalance{
		{Account: "Checking", Amount: decimal.RequireFromString("10")},
	}

	summary := Summarize(income, expenses, balances)

	assert.Equal(t, "100", summary.TotalIncome.String())
	assert.Equal(t, "40", summary.TotalExpenses.String())
	assert.Equal(t, "60", summary.NetIncome.String())
	assert.Equal(t, "10", summary.TotalBalances.String())
	assert.Equal(t, "70", summary.AvailableBudget.String())
	assert.Equal(t, "0.19", summary.DailyBudget.String())
	assert.Equal(t, "1.35", summary.WeeklyBudget.String())
	assert.Equal(t, "70", summary.YearlyBudget.String())
}

func TestReportCombinesAllExpenseSheets(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	require.NoError(t, store.Append(ctx, []model.Transaction{
		mustTxn(t, "2024-01-01", "100.00", "Income"),
		mustTxn(t, "2024-01-02", "10.00", "Expenses"),
		mustTxn(t, "2024-01-03", "20.00", "Business Expenses"),
		mustTxn(t, "2024-01-04", "5.00", "Subscriptions"),
	}))

	agg := New(store, nil)
	weekly, summary, err := agg.Report(ctx, nil)
	require.NoError(t, err)

	require.Len(t, weekly, 1)
	assert.Equal(t, "35", summary.TotalExpenses.String())
	assert.Equal(t, "65", summary.NetIncome.String())
}

func TestReportInsufficientData(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{name: "no data at all", txns: nil},
		{
			name: "income only",
			txns: []model.Transaction{mustTxn(t, "2024-01-01", "100.00", "Income")},
		},
		{
			name: "expenses only",
			txns: []model.Transaction{mustTxn(t, "2024-01-02", "10.00", "Expenses")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			require.NoError(t, store.Append(ctx, tt.txns))

			agg := New(store, nil)
			_, _, err := agg.Report(ctx, nil)
			assert.ErrorIs(t, err, common.ErrInsufficientData)
		})
	}
}
