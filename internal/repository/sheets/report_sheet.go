// Package sheets publishes report rows to a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/rahim112008/ovinmanager/internal/config"
)

var errEmptyRange = errors.New("sheet range must not be empty")

// Repository is the spreadsheet surface used by the weekly report.
type Repository interface {
	// EnsureTab creates the tab when missing and writes header on an empty tab.
	EnsureTab(ctx context.Context, tab string, header []interface{}) error
	AppendRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Spreadsheet is a Repository over one Google spreadsheet.
type Spreadsheet struct {
	service *sheetsapi.Service
	id      string
	logger  *zap.Logger
}

// Open authenticates with the service account file and binds the spreadsheet.
func Open(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Spreadsheet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	logger.Info("report spreadsheet bound", zap.String("spreadsheet_id", cfg.SpreadsheetID))
	return &Spreadsheet{service: service, id: cfg.SpreadsheetID, logger: logger}, nil
}

// EnsureTab implements Repository.
func (s *Spreadsheet) EnsureTab(ctx context.Context, tab string, header []interface{}) error {
	doc, err := s.service.Spreadsheets.Get(s.id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("load spreadsheet: %w", err)
	}

	exists := false
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && strings.EqualFold(sh.Properties.Title, tab) {
			exists = true
			break
		}
	}

	if !exists {
		req := &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				AddSheet: &sheetsapi.AddSheetRequest{
					Properties: &sheetsapi.SheetProperties{Title: tab},
				},
			}},
		}
		if _, err := s.service.Spreadsheets.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("create tab %s: %w", tab, err)
		}
		s.logger.Info("report tab created", zap.String("tab", tab))
	} else {
		first, err := s.ReadRange(ctx, tab+"!A1:A1")
		if err != nil {
			return err
		}
		if len(first) > 0 {
			return nil
		}
	}

	return s.AppendRow(ctx, tab+"!A1", header)
}

// AppendRow implements Repository. Values are written raw so dates stay text.
func (s *Spreadsheet) AppendRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}
	call := s.service.Spreadsheets.Values.Append(s.id, sheetRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	s.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange implements Repository.
func (s *Spreadsheet) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.id, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}
