// Package engine orchestrates the ingestion pipeline: document extraction,
// statement parsing, deduplication, classification, and the ledger write.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/dedupe"
	"github.com/tallyhq/tally/internal/extract"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/parse"
	"github.com/tallyhq/tally/internal/service"
)

// RunDiagnostics reports what happened across one ingestion run. Every
// skipped document and failed batch is counted here so nothing goes wrong
// silently.
type RunDiagnostics struct {
	Documents        int
	DocumentsSkipped int
	Parsed           int
	Deduplicated     int
	Classified       int
	Batches          int
	FailedBatches    int
	Coerced          int
	Rejected         int
	CacheHits        int
}

// Pipeline wires the pipeline stages together. Stages run sequentially;
// the only blocking call is the classifier, and the ledger is written once
// at the end of the run.
type Pipeline struct {
	extractor  *extract.Extractor
	classifier service.Classifier
	store      service.LedgerStore
	logger     *slog.Logger
	parsers    []parse.Parser
	onBatch    func(done, total int)
}

// New creates a pipeline over the given stages. A nil parser list uses the
// default registry.
func New(extractor *extract.Extractor, parsers []parse.Parser, classifier service.Classifier, store service.LedgerStore, logger *slog.Logger) *Pipeline {
	if parsers == nil {
		parsers = parse.Registry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor:  extractor,
		parsers:    parsers,
		classifier: classifier,
		store:      store,
		logger:     logger,
	}
}

// OnProgress registers a callback invoked after each document finishes
// parsing. Used by the CLI for its progress bar.
func (p *Pipeline) OnProgress(fn func(done, total int)) {
	p.onBatch = fn
}

// Run ingests every supported document under inputDir and merges the
// classified results into the ledger. A missing input directory ends the
// run before anything is written; per-document and per-batch failures are
// recorded in the diagnostics and the run continues.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*RunDiagnostics, error) {
	diag := &RunDiagnostics{}

	docs, err := p.extractor.Directory(ctx, inputDir)
	if err != nil {
		return diag, err
	}
	diag.Documents = len(docs)

	var raw []model.RawTransaction
	for i := range docs {
		doc := &docs[i]
		txns, parser, err := parse.Apply(p.parsers, doc)
		switch {
		case errors.Is(err, common.ErrNoTransactions):
			diag.DocumentsSkipped++
			p.logger.Warn("no transactions found in document", "document", doc.ID)
		case err != nil:
			diag.DocumentsSkipped++
			p.logger.Warn("failed to parse document", "document", doc.ID, "error", err)
		default:
			p.logger.Debug("parsed document",
				"document", doc.ID,
				"parser", parser,
				"transactions", len(txns))
			raw = append(raw, txns...)
		}

		// Skipped documents still count as processed.
		if p.onBatch != nil {
			p.onBatch(i+1, len(docs))
		}
	}
	diag.Parsed = len(raw)

	raw = dedupe.RawTransactions(raw)
	diag.Deduplicated = diag.Parsed - len(raw)

	if len(raw) == 0 {
		p.logger.Info("nothing to classify, ledger left untouched")
		return diag, nil
	}

	classified, stats, err := p.classifier.Classify(ctx, raw)
	if err != nil {
		return diag, fmt.Errorf("classification run failed: %w", err)
	}
	diag.Batches = stats.Batches
	diag.FailedBatches = stats.FailedBatches
	diag.Coerced = stats.Coerced
	diag.Rejected = stats.Rejected
	diag.CacheHits = stats.CacheHits
	diag.Classified = len(classified)

	if len(classified) == 0 {
		p.logger.Warn("classification produced no usable transactions, ledger left untouched")
		return diag, nil
	}

	if err := p.store.Append(ctx, classified); err != nil {
		return diag, fmt.Errorf("failed to merge transactions into ledger: %w", err)
	}
	if err := p.store.Save(ctx); err != nil {
		return diag, fmt.Errorf("failed to save ledger: %w", err)
	}

	p.logger.Info("ingestion run complete",
		"documents", diag.Documents,
		"skipped", diag.DocumentsSkipped,
		"parsed", diag.Parsed,
		"duplicates", diag.Deduplicated,
		"classified", diag.Classified,
		"failed_batches", diag.FailedBatches)

	return diag, nil
}
