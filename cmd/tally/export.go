package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Push the ledger's sheets to a Google Sheets spreadsheet",
		Long: `Export mirrors every sheet of the local ledger workbook into a Google
Sheets spreadsheet. The local ledger remains the source of truth; the
remote copy is for sharing and phones.

Authentication uses either a service account key
(GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH) or OAuth2 refresh-token credentials
(GOOGLE_SHEETS_CLIENT_ID, GOOGLE_SHEETS_CLIENT_SECRET,
GOOGLE_SHEETS_REFRESH_TOKEN).`,
		RunE: runExport,
	}

	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to update (created if omitted)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg := sheets.DefaultConfig()
	cfg.SpreadsheetID, _ = cmd.Flags().GetString("spreadsheet-id")
	if name := viper.GetString("sheets.spreadsheet_name"); name != "" {
		cfg.SpreadsheetName = name
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}

	store, err := openLedger(logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var data []sheets.SheetData
	for _, name := range store.SheetNames() {
		rows, err := store.Rows(name)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		data = append(data, sheets.SheetData{Name: name, Rows: rows})
	}
	if len(data) == 0 {
		return fmt.Errorf("ledger has no sheets to export")
	}

	exporter, err := sheets.NewExporter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := exporter.Export(ctx, data); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("exported %d sheets", len(data))))
	return nil
}
