// Package sources implements trails.Catalog over the supported backends.
package sources

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/i474232898/runbuddy/internal/trails"
)

// SheetCatalog reads trails from a Google Sheets range whose first row is
// the header row.
type SheetCatalog struct {
	svc     *sheets.Service
	sheetID string
	rng     string
}

func NewSheetCatalog(ctx context.Context, sheetID, rng string, opts ...option.ClientOption) (*SheetCatalog, error) {
	if sheetID == "" {
		return nil, fmt.Errorf("sheet id is required")
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetCatalog{svc: svc, sheetID: sheetID, rng: rng}, nil
}

func (s *SheetCatalog) Load(ctx context.Context) ([]trails.Record, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, s.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet range %s: %w", s.rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return trails.FromRows(rows), nil
}
