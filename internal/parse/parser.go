// Package parse implements the per-source statement parsers.
//
// Each parser is a matcher over the same capability: claim a document via a
// discriminator (filename pattern or content marker) and turn its extracted
// lines into raw transaction candidates. Parsers are tried in a fixed
// priority order, specific named formats first, the generic
// "date description amount" fallback last. Lines that do not satisfy a
// claimed format's field contract are silently skipped.
package parse

import (
	"fmt"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
)

// Parser is the capability every statement format implements.
type Parser interface {
	// Name identifies the format in diagnostics.
	Name() string

	// TryParse reports whether the parser claims the document, and if so
	// returns the raw transactions it found. A claimed document with zero
	// matching lines returns (nil, true).
	TryParse(doc *extract.Document) ([]model.RawTransaction, bool)
}

// Registry returns the parsers in priority order.
func Registry() []Parser {
	return []Parser{
		&OFXParser{},
		&PayPalActivityParser{},
		&PayPalHistoryParser{},
		&EBayParser{},
		&DelimitedParser{},
		&GenericParser{},
	}
}

// Apply runs the registry against one document and returns the first
// claimant's transactions. A document no parser claims, or that its
// claimant found nothing in, yields ErrNoTransactions.
func Apply(parsers []Parser, doc *extract.Document) ([]model.RawTransaction, string, error) {
	for _, p := range parsers {
		txns, ok := p.TryParse(doc)
		if !ok {
			continue
		}
		if len(txns) == 0 {
			return nil, p.Name(), fmt.Errorf("%s matched %s but found no rows: %w", p.Name(), doc.ID, common.ErrNoTransactions)
		}
		return txns, p.Name(), nil
	}
	return nil, "", fmt.Errorf("no parser matched %s: %w", doc.ID, common.ErrNoTransactions)
}
