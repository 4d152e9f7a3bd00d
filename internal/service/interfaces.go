// Package service defines the interfaces the pipeline components implement.
package service

import (
	"context"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

// LedgerStore is the contract for the durable multi-sheet ledger. The store
// is read-modify-written wholesale: mutations accumulate in memory and a
// single Save persists them atomically.
type LedgerStore interface {
	// Append merges classified transactions into their category sheets,
	// creating sheets with a header row as needed, then deduplicates each
	// touched sheet so reruns never grow the ledger.
	Append(ctx context.Context, txns []model.Transaction) error

	// Category reads every row of one category sheet.
	Category(ctx context.Context, c model.Category) ([]model.Transaction, error)

	// WriteReports replaces the derived report sheets (Weekly Budget,
	// Balance Summary, Balances). Category sheets are never touched.
	WriteReports(ctx context.Context, weekly []model.WeeklyBalance, summary *model.BalanceSummary, balances []model.AccountBalance) error

	// Save durably persists the whole store in one operation.
	Save(ctx context.Context) error

	Close() error
}

// ClassificationService is the external request/response completion
// interface: a templated instruction in, free text expected to contain JSON
// objects out. Substitutable with a deterministic stub in tests.
type ClassificationService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier turns deduplicated raw transactions into canonical
// transactions, batch by batch.
type Classifier interface {
	Classify(ctx context.Context, raw []model.RawTransaction) ([]model.Transaction, *ClassifyStats, error)
}

// ClassifyStats reports what happened across one classification run.
type ClassifyStats struct {
	Batches       int
	FailedBatches int
	Classified    int
	Coerced       int
	Rejected      int
	CacheHits     int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
