package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

// holdingColumns is the column layout shared by the workbook and the spreadsheet.
var holdingColumns = []string{
	"Name", "Ticker", "Quantity", "Price", "Value", "Cost", "Gain", "Gain %", "Currency",
}

// Writer writes one refresh outcome to a destination.
type Writer interface {
	Write(ctx context.Context, result domain.Result, status domain.Status) error
}

// Service fans a refresh outcome out to all configured writers.
// Implements worker.AfterRefreshHook.
type Service struct {
	writers []Writer
}

// NewService creates a new export Service. Nil writers are ignored.
func NewService(writers ...Writer) *Service {
	return &Service{writers: lo.Filter(writers, func(w Writer, _ int) bool { return w != nil })}
}

// Name identifies the service in refresh hook logs.
func (s *Service) Name() string { return "export" }

// Len returns the number of configured writers.
func (s *Service) Len() int { return len(s.writers) }

// AfterRefresh writes the outcome to every writer. A not-ok outcome is not
// exported so a broken file cannot blank a previously good sheet.
func (s *Service) AfterRefresh(ctx context.Context, result domain.Result, status domain.Status) error {
	if !status.OK {
		slog.Info("export: skipping not-ok refresh", "runId", status.RunID)
		return nil
	}
	return s.Export(ctx, result, status)
}

// Export writes result to every writer, attempting all of them even if one fails.
func (s *Service) Export(ctx context.Context, result domain.Result, status domain.Status) error {
	var errs []error
	for i, w := range s.writers {
		if err := w.Write(ctx, result, status); err != nil {
			errs = append(errs, fmt.Errorf("writer %d (%T): %w", i, w, err))
		}
	}
	return errors.Join(errs...)
}

// buildHoldingRows returns the header row, one row per holding and a closing totals row.
func buildHoldingRows(result domain.Result) [][]any {
	data := make([][]any, 0, len(result.Holdings)+2)
	data = append(data, lo.Map(holdingColumns, func(c string, _ int) any { return c }))

	for _, h := range result.Holdings {
		data = append(data, []any{
			h.Name, h.Ticker, h.Quantity,
			domain.Round2(h.Price), domain.Round2(h.Value), domain.Round2(h.Cost),
			domain.Round2(h.GainAbs), domain.Round2(h.GainPct) / 100,
			h.Currency,
		})
	}

	t := result.Totals
	data = append(data, []any{
		"Total", "", nil, nil,
		domain.Round2(t.Value), domain.Round2(t.Cost),
		domain.Round2(t.GainAbs), domain.Round2(t.GainPct) / 100,
		"",
	})
	return data
}

// historyColumns is the layout of the per-refresh history log.
var historyColumns = []string{"Date", "Value", "Cost", "Gain", "Gain %", "Holdings", "Source"}

// buildHistoryRow returns one history entry for a refresh.
func buildHistoryRow(result domain.Result, status domain.Status) []any {
	t := result.Totals
	return []any{
		checkedAt(status).Format("02.01.2006 15:04"),
		domain.Round2(t.Value),
		domain.Round2(t.Cost),
		domain.Round2(t.GainAbs),
		domain.Round2(t.GainPct) / 100,
		len(result.Holdings),
		string(status.Source),
	}
}

func checkedAt(status domain.Status) time.Time {
	if status.CheckedAt.IsZero() {
		return time.Now().UTC()
	}
	return status.CheckedAt.UTC()
}
