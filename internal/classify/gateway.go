// Package classify sends raw transactions to an external categorization
// service in batches and reconciles its replies into canonical transactions.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/service"
)

// Config holds the gateway's batching and politeness settings.
type Config struct {
	// BatchSize caps how many raw transactions go into one service call.
	BatchSize int
	// BatchTimeout bounds one service call; a batch that does not finish
	// in time is a failed batch, not a hung run.
	BatchTimeout time.Duration
	// InterBatchDelay is the minimum pause between service calls. This is
	// rate-limit politeness, not correctness.
	InterBatchDelay time.Duration
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:       20,
		BatchTimeout:    2 * time.Minute,
		InterBatchDelay: time.Second,
	}
}

// Gateway implements service.Classifier against a ClassificationService.
type Gateway struct {
	svc    service.ClassificationService
	cache  *Cache
	logger *slog.Logger
	config Config
}

// NewGateway creates a classification gateway. The cache is optional.
func NewGateway(svc service.ClassificationService, cache *Cache, config Config, logger *slog.Logger) *Gateway {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = DefaultConfig().BatchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		svc:    svc,
		cache:  cache,
		config: config,
		logger: logger,
	}
}

// replyRecord is the shape of one JSON object in a service reply.
type replyRecord struct {
	Date        string `json:"Date"`
	Description string `json:"Description"`
	Amount      string `json:"Amount"`
	Category    string `json:"Category"`
	Source      string `json:"Source"`
}

// Classify processes the raw transactions batch by batch. Per-batch
// failures are recorded in the stats and do not fail the run; only context
// cancellation propagates as an error.
func (g *Gateway) Classify(ctx context.Context, raw []model.RawTransaction) ([]model.Transaction, *service.ClassifyStats, error) {
	stats := &service.ClassifyStats{}
	var classified []model.Transaction

	pending := make([]model.RawTransaction, 0, len(raw))
	for _, r := range raw {
		if tx, hit := g.cachedTransaction(ctx, r); hit {
			classified = append(classified, tx)
			stats.CacheHits++
			continue
		}
		pending = append(pending, r)
	}

	for start := 0; start < len(pending); start += g.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return classified, stats, err
		}

		end := start + g.config.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if start > 0 && g.config.InterBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return classified, stats, ctx.Err()
			case <-time.After(g.config.InterBatchDelay):
			}
		}

		stats.Batches++
		txns, err := g.classifyBatch(ctx, batch, stats)
		if err != nil {
			stats.FailedBatches++
			g.logger.Warn("classification batch failed",
				"batch_size", len(batch),
				"error", err)
			continue
		}
		classified = append(classified, txns...)
	}

	stats.Classified = len(classified)
	return classified, stats, nil
}

// classifyBatch performs one service call and reconciles its reply.
func (g *Gateway) classifyBatch(ctx context.Context, batch []model.RawTransaction, stats *service.ClassifyStats) ([]model.Transaction, error) {
	prompt, err := buildPrompt(batch)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.config.BatchTimeout)
	defer cancel()

	reply, err := g.svc.Complete(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classification service call failed: %w", err)
	}

	objects := ExtractJSONObjects(reply)
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: reply contained no valid JSON objects", common.ErrUnparseableReply)
	}

	bySignature := indexBatch(batch)

	var txns []model.Transaction
	for _, obj := range objects {
		var rec replyRecord
		if err := json.Unmarshal(obj, &rec); err != nil {
			// A balanced span that is valid JSON but not an object
			// of the expected shape; skip it.
			continue
		}

		if rec.Date == "" || rec.Amount == "" {
			stats.Rejected++
			g.logger.Warn("rejecting classified record",
				"description", rec.Description,
				"error", fmt.Errorf("%w: date or amount", common.ErrMissingField))
			continue
		}

		if rec.Category == "" {
			// The service violated the never-null instruction. The
			// record is kept, not dropped: losing a financial record
			// silently is worse than an uncertain label.
			rec.Category = string(model.CategoryUncertain)
			stats.Coerced++
			g.logger.Warn("classified record missing category",
				"description", rec.Description,
				"error", common.ErrMissingField)
		} else if _, ok := model.ParseCategory(rec.Category); !ok {
			stats.Coerced++
		}

		if rec.Source == "" {
			if raw, ok := bySignature[rec.Description]; ok {
				rec.Source = raw.Source
			}
		}

		tx, err := model.NewTransaction(rec.Date, rec.Description, rec.Amount, rec.Category, rec.Source)
		if err != nil {
			stats.Rejected++
			g.logger.Warn("rejecting classified record",
				"description", rec.Description,
				"error", err)
			continue
		}

		txns = append(txns, tx)
		if raw, ok := bySignature[rec.Description]; ok {
			g.storeInCache(ctx, raw, tx)
		}
	}

	return txns, nil
}

// indexBatch maps descriptions back to their raw tuples so replies can be
// matched to inputs for source backfill and cache storage.
func indexBatch(batch []model.RawTransaction) map[string]model.RawTransaction {
	idx := make(map[string]model.RawTransaction, len(batch))
	for _, r := range batch {
		if _, exists := idx[r.Description]; !exists {
			idx[r.Description] = r
		}
	}
	return idx
}

func (g *Gateway) cachedTransaction(ctx context.Context, raw model.RawTransaction) (model.Transaction, bool) {
	if g.cache == nil {
		return model.Transaction{}, false
	}
	tx, hit, err := g.cache.Get(ctx, raw)
	if err != nil {
		g.logger.Warn("classification cache lookup failed", "error", err)
		return model.Transaction{}, false
	}
	return tx, hit
}

func (g *Gateway) storeInCache(ctx context.Context, raw model.RawTransaction, tx model.Transaction) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Put(ctx, raw, tx); err != nil {
		g.logger.Warn("classification cache store failed", "error", err)
	}
}
