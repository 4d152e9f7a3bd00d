package classify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/tallyhq/tally/internal/model"
)

// Cache is a durable classification cache keyed by the raw transaction
// tuple hash. Reprocessing an unchanged input directory hits the cache
// instead of re-calling the external service.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if needed) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS classifications (
		key         TEXT PRIMARY KEY,
		date        TEXT NOT NULL,
		amount      TEXT NOT NULL,
		description TEXT NOT NULL,
		category    TEXT NOT NULL,
		source      TEXT NOT NULL,
		cached_at   TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached transaction for a raw tuple, if present.
func (c *Cache) Get(ctx context.Context, raw model.RawTransaction) (model.Transaction, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT date, amount, description, category, source FROM classifications WHERE key = ?`,
		raw.Hash())

	var date, amount, description, category, source string
	if err := row.Scan(&date, &amount, &description, &category, &source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, false, nil
		}
		return model.Transaction{}, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	tx, err := model.NewTransaction(date, description, amount, category, source)
	if err != nil {
		// A cached row that no longer validates is treated as a miss.
		return model.Transaction{}, false, nil
	}
	return tx, true, nil
}

// Put stores a classified transaction under its raw tuple key.
func (c *Cache) Put(ctx context.Context, raw model.RawTransaction, tx model.Transaction) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO classifications (key, date, amount, description, category, source, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		raw.Hash(),
		model.FormatDate(tx.Date),
		tx.Amount.String(),
		tx.Description,
		string(tx.Category),
		tx.Source,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache store failed: %w", err)
	}
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
