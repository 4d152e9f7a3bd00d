package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/service"
)

// mockClassifier labels everything Expenses without an external call.
type mockClassifier struct {
	calls int
	seen  []model.RawTransaction
	err   error
}

func (m *mockClassifier) Classify(_ context.Context, raw []model.RawTransaction) ([]model.Transaction, *service.ClassifyStats, error) {
	m.calls++
	m.seen = append(m.seen, raw...)
	if m.err != nil {
		return nil, nil, m.err
	}

	stats := &service.ClassifyStats{Batches: 1}
	var txns []model.Transaction
	for _, r := range raw {
		tx, err := model.NewTransaction(r.Date, r.Description, r.Amount, "Expenses", r.Source)
		if err != nil {
			stats.Rejected++
			continue
		}
		txns = append(txns, tx)
	}
	stats.Classified = len(txns)
	return txns, stats, nil
}

// recordingStore captures appends and saves in memory.
type recordingStore struct {
	appended []model.Transaction
	saves    int
	saveErr  error
}

func (r *recordingStore) Append(_ context.Context, txns []model.Transaction) error {
	r.appended = append(r.appended, txns...)
	return nil
}

func (r *recordingStore) Category(context.Context, model.Category) ([]model.Transaction, error) {
	return nil, nil
}

func (r *recordingStore) WriteReports(context.Context, []model.WeeklyBalance, *model.BalanceSummary, []model.AccountBalance) error {
	return nil
}

func (r *recordingStore) Save(context.Context) error {
	r.saves++
	return r.saveErr
}

func (r *recordingStore) Close() error { return nil }

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestRunIngestsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "statement.txt",
		"2024-01-01 Coffee shop 5.00\n2024-01-02 Grocery store 42.10\n")
	writeFile(t, dir, "orders.csv",
		"2024-01-03,Used books,12.00\n")

	classifier := &mockClassifier{}
	store := &recordingStore{}
	p := New(extract.New(nil), nil, classifier, store, nil)

	diag, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, diag.Documents)
	assert.Equal(t, 0, diag.DocumentsSkipped)
	assert.Equal(t, 3, diag.Parsed)
	assert.Equal(t, 3, diag.Classified)
	assert.Len(t, store.appended, 3)
	assert.Equal(t, 1, store.saves)
}

func TestRunMissingDirectoryWritesNothing(t *testing.T) {
	classifier := &mockClassifier{}
	store := &recordingStore{}
	p := New(extract.New(nil), nil, classifier, store, nil)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, 0, classifier.calls)
	assert.Empty(t, store.appended)
	assert.Equal(t, 0, store.saves)
}

func TestRunSkipsUnparseableDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "statement.txt", "2024-01-01 Coffee shop 5.00\n")
	writeFile(t, dir, "notes.txt", "nothing resembling a transaction\n")

	classifier := &mockClassifier{}
	store := &recordingStore{}
	p := New(extract.New(nil), nil, classifier, store, nil)

	diag, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, diag.Documents)
	assert.Equal(t, 1, diag.DocumentsSkipped)
	assert.Equal(t, 1, diag.Classified)
	assert.Equal(t, 1, store.saves)
}

func TestRunDeduplicatesBeforeClassification(t *testing.T) {
	dir := t.TempDir()
	// Same rows in two files: the classifier must see each tuple once.
	writeFile(t, dir, "a.txt", "2024-01-01 Coffee shop 5.00\n")
	writeFile(t, dir, "b.txt", "2024-01-01 Coffee shop 5.00\n")

	classifier := &mockClassifier{}
	store := &recordingStore{}
	p := New(extract.New(nil), nil, classifier, store, nil)

	diag, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, diag.Parsed)
	assert.Equal(t, 1, diag.Deduplicated)
	assert.Len(t, classifier.seen, 1)
}

func TestRunEmptyDirectoryLeavesLedgerUntouched(t *testing.T) {
	classifier := &mockClassifier{}
	store := &recordingStore{}
	p := New(extract.New(nil), nil, classifier, store, nil)

	diag, err := p.Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0, diag.Documents)
	assert.Equal(t, 0, classifier.calls)
	assert.Equal(t, 0, store.saves)
}

func TestRunClassifierErrorAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "statement.txt", "2024-01-01 Coffee shop 5.00\n")

	classifier := &mockClassifier{err: fmt.Errorf("context canceled")}
	store := &recordingStore{}
	p := New(extract.New(nil), nil, classifier, store, nil)

	_, err := p.Run(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, 0, store.saves)
}

func TestRunProgressCallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "2024-01-01 Coffee shop 5.00\n")
	writeFile(t, dir, "b.txt", "2024-01-02 Grocery store 10.00\n")

	p := New(extract.New(nil), nil, &mockClassifier{}, &recordingStore{}, nil)

	var seen []int
	p.OnProgress(func(done, total int) {
		assert.Equal(t, 2, total)
		seen = append(seen, done)
	})

	_, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestRunProgressCountsSkippedDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "2024-01-01 Coffee shop 5.00\n")
	writeFile(t, dir, "b.txt", "nothing resembling a transaction\n")

	p := New(extract.New(nil), nil, &mockClassifier{}, &recordingStore{}, nil)

	last := 0
	p.OnProgress(func(done, _ int) { last = done })

	diag, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.DocumentsSkipped)
	assert.Equal(t, 2, last) // the bar must reach total even with skips
}
