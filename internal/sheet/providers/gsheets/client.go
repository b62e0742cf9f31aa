// Package gsheets stores library tables in a Google Sheets spreadsheet.
//
// Each table is one worksheet (tab) of the spreadsheet. Access goes through
// the Sheets v4 values API with service-account credentials.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mrlokans/librarian/internal/sheet"
)

// valueInputRaw stores strings exactly as given, without parsing dates or numbers.
const valueInputRaw = "RAW"

// valuesAPI is the subset of the Sheets API the store uses.
type valuesAPI interface {
	Get(ctx context.Context, a1 string, byColumns bool) ([][]interface{}, error)
	Update(ctx context.Context, a1 string, values [][]interface{}) error
	Clear(ctx context.Context, a1 string) error
	Titles(ctx context.Context) ([]string, error)
}

// Config configures the connection to a spreadsheet.
type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	Tables          []string
}

// Store implements sheet.Store on top of a Google spreadsheet.
type Store struct {
	api    valuesAPI
	logger *zap.Logger
}

var _ sheet.Store = (*Store)(nil)

// New connects to the spreadsheet and checks that every configured table
// exists as a worksheet. Connection failures wrap sheet.ErrStoreUnavailable.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is not set", sheet.ErrStoreUnavailable)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create sheets client: %v", sheet.ErrStoreUnavailable, err)
	}

	return newStore(ctx, &serviceAPI{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.Tables, logger)
}

func newStore(ctx context.Context, api valuesAPI, tables []string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	titles, err := api.Titles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheet.ErrStoreUnavailable, err)
	}

	present := make(map[string]bool, len(titles))
	for _, t := range titles {
		present[t] = true
	}
	var missing []string
	for _, t := range tables {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing worksheets: %s", sheet.ErrStoreUnavailable, strings.Join(missing, ", "))
	}

	logger.Debug("connected to spreadsheet", zap.Strings("worksheets", titles))
	return &Store{api: api, logger: logger}, nil
}

func (s *Store) ReadColumn(ctx context.Context, table string, col sheet.Column) ([]string, error) {
	if !col.Valid() {
		return nil, fmt.Errorf("%w: column %d", sheet.ErrInvalidRange, col)
	}
	rng := sheet.Range{
		From: sheet.Cell{Col: col, Row: 1},
		To:   sheet.Cell{Col: col},
	}

	values, err := s.api.Get(ctx, sheet.TableRange(table, rng), true)
	if err != nil {
		return nil, fmt.Errorf("failed to read column %s of %s: %w", col.Letter(), table, err)
	}
	if len(values) == 0 {
		return []string{}, nil
	}
	return sheet.TrimTrailing(toStrings(values[0])), nil
}

func (s *Store) ReadRow(ctx context.Context, table string, row int) ([]string, error) {
	rng := sheet.RowRange(row, sheet.ColumnA, sheet.LastColumn)
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	values, err := s.api.Get(ctx, sheet.TableRange(table, rng), false)
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d of %s: %w", row, table, err)
	}
	if len(values) == 0 {
		return []string{}, nil
	}
	return sheet.TrimTrailing(toStrings(values[0])), nil
}

func (s *Store) WriteRange(ctx context.Context, table string, topLeft sheet.Cell, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return nil
	}
	last := topLeft.Col + sheet.Column(width-1)
	rng := sheet.Range{
		From: topLeft,
		To:   sheet.Cell{Col: last, Row: topLeft.Row + len(rows) - 1},
	}
	if err := rng.Validate(); err != nil {
		return err
	}

	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = make([]interface{}, len(r))
		for j, v := range r {
			values[i][j] = v
		}
	}

	if err := s.api.Update(ctx, sheet.TableRange(table, rng), values); err != nil {
		return fmt.Errorf("failed to write %s of %s: %w", rng.A1(), table, err)
	}
	s.logger.Debug("wrote range", zap.String("table", table), zap.String("range", rng.A1()), zap.Int("rows", len(rows)))
	return nil
}

func (s *Store) ClearRange(ctx context.Context, table string, rng sheet.Range) error {
	if err := rng.Validate(); err != nil {
		return err
	}
	if err := s.api.Clear(ctx, sheet.TableRange(table, rng)); err != nil {
		return fmt.Errorf("failed to clear %s of %s: %w", rng.A1(), table, err)
	}
	s.logger.Debug("cleared range", zap.String("table", table), zap.String("range", rng.A1()))
	return nil
}

func (s *Store) AppendAfterLast(ctx context.Context, table string, col sheet.Column, rows [][]string) error {
	column, err := s.ReadColumn(ctx, table, col)
	if err != nil {
		return err
	}
	return s.WriteRange(ctx, table, sheet.Cell{Col: sheet.ColumnA, Row: len(column) + 1}, rows)
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// serviceAPI adapts *sheets.Service to valuesAPI.
type serviceAPI struct {
	svc           *sheets.Service
	spreadsheetID string
}

func (a *serviceAPI) Get(ctx context.Context, a1 string, byColumns bool) ([][]interface{}, error) {
	call := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, a1).Context(ctx)
	if byColumns {
		call = call.MajorDimension("COLUMNS")
	}
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *serviceAPI) Update(ctx context.Context, a1 string, values [][]interface{}) error {
	_, err := a.svc.Spreadsheets.Values.
		Update(a.spreadsheetID, a1, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) Clear(ctx context.Context, a1 string) error {
	_, err := a.svc.Spreadsheets.Values.
		Clear(a.spreadsheetID, a1, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) Titles(ctx context.Context) ([]string, error) {
	ss, err := a.svc.Spreadsheets.Get(a.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if ss == nil {
		return nil, errors.New("empty spreadsheet response")
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}
