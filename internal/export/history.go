package export

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

// appendHistory writes the header row if HISTORY is new or empty, then appends
// one row for this refresh.
func (w *SheetsWriter) appendHistory(ctx context.Context, meta sheetMeta, result domain.Result, status domain.Status) error {
	existing, err := w.svc.Spreadsheets.Values.Get(
		w.spreadsheetID, historyTab+"!A1",
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", historyTab, err)
	}

	if len(existing.Values) == 0 {
		header := lo.Map(historyColumns, func(c string, _ int) any { return c })
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			historyTab+"!A1",
			&sheets.ValueRange{Values: [][]any{header}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing %s header: %w", historyTab, err)
		}
		if err := w.formatHistory(ctx, meta); err != nil {
			return fmt.Errorf("formatting %s: %w", historyTab, err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		historyTab+"!A:G",
		&sheets.ValueRange{Values: [][]any{buildHistoryRow(result, status)}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s row: %w", historyTab, err)
	}
	return nil
}

// formatHistory gives HISTORY a light-green bold header, a frozen first row
// and number formats for the money and percent columns.
func (w *SheetsWriter) formatHistory(ctx context.Context, meta sheetMeta) error {
	// #D9EAD3
	lightGreen := &sheets.Color{Red: 0.851, Green: 0.918, Blue: 0.827}
	totalCols := int64(len(historyColumns))

	reqs := []*sheets.Request{
		cellFormatReq(meta.id, 0, 1, 0, totalCols,
			&sheets.CellFormat{
				BackgroundColor:     lightGreen,
				TextFormat:          &sheets.TextFormat{Bold: true},
				HorizontalAlignment: "CENTER",
			},
			"userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)"),
		cellFormatReq(meta.id, 1, 100000, 1, 4,
			&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0.00"}},
			"userEnteredFormat.numberFormat"),
		cellFormatReq(meta.id, 1, 100000, 4, 5,
			&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "PERCENT", Pattern: "0.00%"}},
			"userEnteredFormat.numberFormat"),
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        meta.id,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: reqs},
	).Context(ctx).Do()
	return err
}

func cellFormatReq(sheetID, startRow, endRow, startCol, endCol int64, format *sheets.CellFormat, fields string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		},
	}
}
