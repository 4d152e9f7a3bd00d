// Package ledger implements the durable multi-sheet transaction store.
//
// The store is an XLSX workbook with one sheet per category plus the derived
// report sheets. It is owned exclusively by the writer: mutations accumulate
// in memory and a single atomic Save persists the whole document, so the
// prior store is left untouched if anything fails mid-run.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/dedupe"
	"github.com/tallyhq/tally/internal/model"
)

// Derived report sheet names.
const (
	SheetWeeklyBudget   = "Weekly Budget"
	SheetBalanceSummary = "Balance Summary"
	SheetBalances       = "Balances"
)

// categoryHeader is the fixed header row of every category sheet.
var categoryHeader = []string{"Date", "Amount", "Description", "Source"}

// Store is an XLSX-backed ledger.
type Store struct {
	file   *excelize.File
	logger *slog.Logger
	path   string
}

// Open loads the ledger at path, or starts a fresh workbook if none exists.
// Open and Save failures are ledger I/O failures and fatal to the run.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var file *excelize.File
	if _, err := os.Stat(path); err == nil {
		file, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open %s: %v", common.ErrLedgerIO, path, err)
		}
	} else if os.IsNotExist(err) {
		file = excelize.NewFile()
	} else {
		return nil, fmt.Errorf("%w: failed to stat %s: %v", common.ErrLedgerIO, path, err)
	}

	return &Store{
		file:   file,
		logger: logger,
		path:   path,
	}, nil
}

// Append merges classified transactions into their category sheets. Sheets
// are created with the fixed header on first use; after appending, each
// touched sheet is deduplicated whole (header excluded) so re-running
// extraction on the same inputs never grows the ledger.
func (s *Store) Append(_ context.Context, txns []model.Transaction) error {
	byCategory := make(map[model.Category][]model.Transaction)
	for _, tx := range txns {
		byCategory[tx.Category] = append(byCategory[tx.Category], tx)
	}

	for _, category := range model.Categories() {
		batch := byCategory[category]
		if len(batch) == 0 {
			continue
		}

		sheet := string(category)
		existing, err := s.sheetRows(sheet)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(existing)+len(batch))
		rows = append(rows, existing...)
		for _, tx := range batch {
			rows = append(rows, []string{
				model.FormatDate(tx.Date),
				tx.Amount.String(),
				tx.Description,
				tx.Source,
			})
		}

		// GetRows trims trailing empty cells, so a re-read row can be
		// narrower than the row that was written. Pad to header width
		// before keying or such rows would never match their duplicates.
		deduped := dedupe.Rows(padRows(rows, len(categoryHeader)))
		if err := s.rewriteSheet(sheet, categoryHeader, deduped); err != nil {
			return err
		}

		s.logger.Debug("merged category sheet",
			"sheet", sheet,
			"appended", len(batch),
			"rows", len(deduped))
	}

	return nil
}

// Category reads every row of one category sheet. A missing sheet yields no
// rows; rows that no longer validate are skipped with a diagnostic.
func (s *Store) Category(_ context.Context, c model.Category) ([]model.Transaction, error) {
	rows, err := s.sheetRows(string(c))
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		source := ""
		if len(row) > 3 {
			source = row[3]
		}
		tx, err := model.NewTransaction(row[0], row[2], row[1], string(c), source)
		if err != nil {
			s.logger.Warn("skipping invalid ledger row",
				"sheet", string(c),
				"row", i+2,
				"error", err)
			continue
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

// WriteReports replaces the three derived report sheets. Category sheets
// are never touched here.
func (s *Store) WriteReports(_ context.Context, weekly []model.WeeklyBalance, summary *model.BalanceSummary, balances []model.AccountBalance) error {
	weeklyRows := make([][]string, 0, len(weekly))
	for _, w := range weekly {
		weeklyRows = append(weeklyRows, []string{
			model.FormatDate(w.WeekStart),
			w.Income.String(),
			w.Expenses.String(),
			w.Balance.String(),
		})
	}
	if err := s.rewriteSheet(SheetWeeklyBudget, []string{"Week Start", "Income", "Expenses", "Balance"}, weeklyRows); err != nil {
		return err
	}

	summaryRows := [][]string{
		{"Total Income", summary.TotalIncome.String()},
		{"Total Expenses", summary.TotalExpenses.String()},
		{"Net Income", summary.NetIncome.String()},
		{"Total Account Balances", summary.TotalBalances.String()},
		{"Available Budget", summary.AvailableBudget.String()},
		{"Daily Budget", summary.DailyBudget.String()},
		{"Weekly Budget", summary.WeeklyBudget.String()},
		{"Yearly Budget", summary.YearlyBudget.String()},
	}
	if err := s.rewriteSheet(SheetBalanceSummary, []string{"Description", "Amount"}, summaryRows); err != nil {
		return err
	}

	balanceRows := make([][]string, 0, len(balances))
	for _, b := range balances {
		balanceRows = append(balanceRows, []string{b.Account, b.Amount.String()})
	}
	return s.rewriteSheet(SheetBalances, []string{"Account Type", "Amount"}, balanceRows)
}

// Rows returns the raw cell rows of one sheet, header included. Used by the
// spreadsheet exporter.
func (s *Store) Rows(sheet string) ([][]string, error) {
	idx, err := s.file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %v", common.ErrLedgerIO, sheet, err)
	}
	return rows, nil
}

// SheetNames lists the workbook's sheets in order.
func (s *Store) SheetNames() []string {
	return s.file.GetSheetList()
}

// Save persists the whole store in one atomic operation: the workbook is
// written to a temporary file beside the target and renamed over it.
func (s *Store) Save(_ context.Context) error {
	s.dropDefaultSheet()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", common.ErrLedgerIO, dir, err)
	}

	// SaveAs insists on a workbook suffix, so the temp file keeps .xlsx.
	tmp := filepath.Join(dir, "."+filepath.Base(s.path)+".tmp.xlsx")
	if err := s.file.SaveAs(tmp); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", common.ErrLedgerIO, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: failed to replace %s: %v", common.ErrLedgerIO, s.path, err)
	}

	s.logger.Info("ledger saved", "path", s.path)
	return nil
}

// Close releases the workbook.
func (s *Store) Close() error {
	return s.file.Close()
}

// padRows widens every row to at least width cells.
func padRows(rows [][]string, width int) [][]string {
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows
}

// sheetRows returns a sheet's data rows with the header excluded. A missing
// sheet yields no rows.
func (s *Store) sheetRows(sheet string) ([][]string, error) {
	idx, err := s.file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}

	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %v", common.ErrLedgerIO, sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// rewriteSheet replaces a sheet's full contents with a header plus rows.
func (s *Store) rewriteSheet(sheet string, header []string, rows [][]string) error {
	idx, err := s.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("%w: invalid sheet name %s: %v", common.ErrLedgerIO, sheet, err)
	}
	if idx >= 0 {
		// A workbook must keep at least one sheet; park a scratch sheet
		// if the target is the only one. Save drops it again.
		if len(s.file.GetSheetList()) == 1 {
			if _, err := s.file.NewSheet("Sheet1"); err != nil {
				return fmt.Errorf("%w: failed to create scratch sheet: %v", common.ErrLedgerIO, err)
			}
		}
		if err := s.file.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("%w: failed to clear sheet %s: %v", common.ErrLedgerIO, sheet, err)
		}
	}
	if _, err := s.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("%w: failed to create sheet %s: %v", common.ErrLedgerIO, sheet, err)
	}

	if err := s.setRow(sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := s.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setRow(sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("%w: invalid row %d: %v", common.ErrLedgerIO, rowNum, err)
	}

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := s.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("%w: failed to write row %d of %s: %v", common.ErrLedgerIO, rowNum, sheet, err)
	}
	return nil
}

// dropDefaultSheet removes excelize's default sheet once real sheets exist.
func (s *Store) dropDefaultSheet() {
	sheets := s.file.GetSheetList()
	if len(sheets) < 2 {
		return
	}
	for _, sheet := range sheets {
		if sheet != "Sheet1" {
			continue
		}
		rows, err := s.file.GetRows(sheet)
		if err == nil && len(rows) == 0 {
			_ = s.file.DeleteSheet(sheet)
		}
		return
	}
}
