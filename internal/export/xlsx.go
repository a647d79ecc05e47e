package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

const (
	holdingsSheet = "Holdings"
	statusSheet   = "Status"
)

// XLSXWriter writes the holdings table to a local workbook, replacing it on every refresh.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer for the workbook at path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write renders result into a fresh workbook and moves it over the previous one.
func (w *XLSXWriter) Write(_ context.Context, result domain.Result, status domain.Status) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", holdingsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeRows(f, holdingsSheet, buildHoldingRows(result)); err != nil {
		return err
	}
	if err := formatHoldings(f, len(result.Holdings)+2); err != nil {
		return fmt.Errorf("formatting holdings sheet: %w", err)
	}

	if _, err := f.NewSheet(statusSheet); err != nil {
		return fmt.Errorf("creating status sheet: %w", err)
	}
	if err := writeRows(f, statusSheet, buildStatusRows(status)); err != nil {
		return err
	}

	return w.save(f)
}

// save writes the workbook next to its destination and renames it into place.
func (w *XLSXWriter) save(f *excelize.File) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("saving workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replacing workbook %s: %w", w.path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// formatHoldings applies a bold header, money and percent formats and a frozen header row.
func formatHoldings(f *excelize.File, lastRow int) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9EAD3"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return err
	}

	last := fmt.Sprint(lastRow)
	steps := []func() error{
		func() error { return f.SetCellStyle(holdingsSheet, "A1", "I1", header) },
		func() error { return f.SetCellStyle(holdingsSheet, "D2", "G"+last, money) },
		func() error { return f.SetCellStyle(holdingsSheet, "H2", "H"+last, percent) },
		func() error { return f.SetCellStyle(holdingsSheet, "A"+last, "G"+last, bold) },
		func() error { return f.SetColWidth(holdingsSheet, "A", "A", 36) },
		func() error { return f.SetColWidth(holdingsSheet, "B", "I", 14) },
		func() error {
			return f.SetPanes(holdingsSheet, &excelize.Panes{
				Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
			})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func buildStatusRows(status domain.Status) [][]any {
	return [][]any{
		{"State", status.State()},
		{"Message", status.Message},
		{"Source", string(status.Source)},
		{"Delimiter", status.Delimiter},
		{"Checked at", checkedAt(status).Format("2006-01-02 15:04:05")},
		{"Run", status.RunID.String()},
	}
}
