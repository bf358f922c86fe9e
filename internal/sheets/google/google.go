// Package google mirrors transactions into a Google Sheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Exporter writes one row per transaction. Row lookups and writes are
// serialized so concurrent appends do not race for the same row.
type Exporter struct {
	mu            sync.Mutex
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheet:         strings.TrimSpace(cfg.SheetName),
		logger:        logger,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		logger.Info("Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.Info("Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (e *Exporter) ids(ctx context.Context) ([][]any, error) {
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, columnRange(e.sheet, "A")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids from %s: %w", e.sheet, err)
	}
	return resp.Values, nil
}

func (e *Exporter) writeRow(ctx context.Context, row int, values []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rowRange(e.sheet, row), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write row %d in %s: %w", row, e.sheet, err)
	}
	return nil
}

// appendLocked writes tx after the last used row of values, adding the
// header to an empty sheet. It returns the A1 range written.
func (e *Exporter) appendLocked(ctx context.Context, values [][]any, tx core.Transaction) (string, error) {
	if len(values) == 0 {
		if err := e.writeRow(ctx, 1, Header); err != nil {
			return "", err
		}
		values = [][]any{{Header[0]}}
	}
	next := len(values) + 1
	if err := e.writeRow(ctx, next, transactionRow(tx)); err != nil {
		return "", err
	}
	e.logger.Info("Exported transaction", log.FieldTransactionID, tx.ID, "row", next)
	return rowRange(e.sheet, next), nil
}

// Upsert rewrites the row holding tx.ID, appending when none exists, so a
// redelivered event never produces a second row.
func (e *Exporter) Upsert(ctx context.Context, tx core.Transaction) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	values, err := e.ids(ctx)
	if err != nil {
		return "", err
	}
	row := findRow(values, tx.ID)
	if row == 0 {
		return e.appendLocked(ctx, values, tx)
	}
	if err := e.writeRow(ctx, row, transactionRow(tx)); err != nil {
		return "", err
	}
	e.logger.Info("Rewrote transaction row", log.FieldTransactionID, tx.ID, "row", row)
	return rowRange(e.sheet, row), nil
}

// Clear blanks the row holding id. A missing row is not an error.
func (e *Exporter) Clear(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	values, err := e.ids(ctx)
	if err != nil {
		return err
	}
	row := findRow(values, id)
	if row == 0 {
		e.logger.Warn("Row not found for delete", log.FieldTransactionID, id)
		return nil
	}
	return e.writeRow(ctx, row, emptyRow())
}
