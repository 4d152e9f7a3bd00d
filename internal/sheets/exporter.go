package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/service"
)

// SheetData is one named sheet's cell rows, header included.
type SheetData struct {
	Name string
	Rows [][]string
}

// Exporter mirrors ledger sheets into a Google Sheets spreadsheet.
type Exporter struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewExporter creates a Google Sheets exporter.
func NewExporter(ctx context.Context, config Config, logger *slog.Logger) (*Exporter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Exporter{
		config:  config,
		service: svc,
		logger:  logger,
	}, nil
}

// Export replaces the remote spreadsheet's contents with the given sheets.
// Each remote sheet is cleared and rewritten whole; writes retry with
// backoff. The local ledger stays the source of truth.
func (e *Exporter) Export(ctx context.Context, data []SheetData) error {
	spreadsheetID, err := e.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  e.config.RetryAttempts,
		InitialDelay: e.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for _, sheet := range data {
		if err := e.ensureSheet(ctx, spreadsheetID, sheet.Name); err != nil {
			return err
		}

		err := common.WithRetry(ctx, func() error {
			return e.writeSheet(ctx, spreadsheetID, sheet)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to export sheet %s: %w", sheet.Name, err)
		}

		e.logger.Info("exported sheet",
			"sheet", sheet.Name,
			"rows", len(sheet.Rows))
	}

	e.logger.Info("export completed",
		"spreadsheet_id", spreadsheetID,
		"sheets", len(data))
	return nil
}

// createSheetsService creates a Google Sheets API service using either a
// service account key or OAuth2 refresh-token credentials.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet verifies the configured spreadsheet or creates a
// fresh one.
func (e *Exporter) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if e.config.SpreadsheetID != "" {
		_, err := e.service.Spreadsheets.Get(e.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", e.config.SpreadsheetID, err)
		}
		return e.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    e.config.SpreadsheetName,
			TimeZone: e.config.TimeZone,
		},
	}

	created, err := e.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	e.logger.Info("created spreadsheet",
		"spreadsheet_id", created.SpreadsheetId,
		"title", e.config.SpreadsheetName)
	return created.SpreadsheetId, nil
}

// ensureSheet adds the named sheet to the spreadsheet if it is missing.
func (e *Exporter) ensureSheet(ctx context.Context, spreadsheetID, name string) error {
	spreadsheet, err := e.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to read spreadsheet %s: %w", spreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := e.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to add sheet %s: %w", name, err)
	}
	return nil
}

// writeSheet clears one remote sheet and writes the rows in a single update.
func (e *Exporter) writeSheet(ctx context.Context, spreadsheetID string, sheet SheetData) error {
	clearRange := fmt.Sprintf("'%s'", sheet.Name)
	_, err := e.service.Spreadsheets.Values.Clear(spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to clear sheet %s: %w", sheet.Name, err)
	}

	values := make([][]any, len(sheet.Rows))
	for i, row := range sheet.Rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	valueRange := &sheets.ValueRange{
		Range:  fmt.Sprintf("'%s'!A1", sheet.Name),
		Values: values,
	}
	_, err = e.service.Spreadsheets.Values.Update(spreadsheetID, valueRange.Range, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to write sheet %s: %w", sheet.Name, err)
	}
	return nil
}
