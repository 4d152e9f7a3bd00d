package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tallyhq/tally/internal/ledger"
)

// ledgerPath resolves the ledger workbook location from config, falling
// back to the standard data directory.
func ledgerPath() (string, error) {
	if path := viper.GetString("ledger.path"); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tally", "ledger.xlsx"), nil
}

// cachePath resolves the classification cache location.
func cachePath() (string, error) {
	if path := viper.GetString("cache.path"); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tally", "classifications.db"), nil
}

// openLedger opens the configured ledger workbook.
func openLedger(logger *slog.Logger) (*ledger.Store, error) {
	path, err := ledgerPath()
	if err != nil {
		return nil, err
	}
	store, err := ledger.Open(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return store, nil
}
