// Package dedupe removes duplicate transaction rows by full-tuple equality.
//
// Deduplication is idempotent and order-free: callers must not rely on the
// order of the result. Merging new rows into an existing sheet runs the
// existing and new rows through the same pass, which is what keeps reruns
// of the pipeline from growing the ledger.
package dedupe

import "github.com/tallyhq/tally/internal/model"

// ByKey returns the distinct elements of in under the given identity
// function, first occurrence kept.
func ByKey[T any](in []T, key func(T) string) []T {
	if len(in) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, item := range in {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// RawTransactions deduplicates candidate transactions.
func RawTransactions(in []model.RawTransaction) []model.RawTransaction {
	return ByKey(in, model.RawTransaction.Key)
}

// Transactions deduplicates canonical transactions.
func Transactions(in []model.Transaction) []model.Transaction {
	return ByKey(in, model.Transaction.Key)
}

// Rows deduplicates raw sheet rows by full-tuple equality. Used by the
// ledger writer after appending, with the header row excluded by the caller.
func Rows(in [][]string) [][]string {
	return ByKey(in, func(row []string) string {
		key := ""
		for _, cell := range row {
			key += cell + "\x1f"
		}
		return key
	})
}
