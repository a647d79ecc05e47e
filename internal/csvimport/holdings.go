// Package csvimport parses delimited Portfolio Performance exports: the
// "holdings" report and transaction ledgers.
package csvimport

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/message"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
	"github.com/badmin-c/pp-portfolio/internal/portfolio"
)

// sniffLines is how many leading lines the delimiter is detected from.
const sniffLines = 5

// Parser parses CSV exports, writing status messages through its printer.
type Parser struct {
	p *message.Printer
}

// NewParser creates a Parser. A nil printer uses the default catalog language.
func NewParser(p *message.Printer) *Parser {
	if p == nil {
		p = i18n.Default()
	}
	return &Parser{p: p}
}

// ParseHoldings parses a holdings export with the default language.
func ParseHoldings(raw string) (domain.Result, domain.Status) {
	return NewParser(nil).ParseHoldings(raw)
}

// ParseHoldings parses a holdings export, one row per security.
//
// Missing amounts are reconciled in a fixed order: value from quantity and price,
// then gain from value and cost, then cost from value and gain.
func (ps *Parser) ParseHoldings(raw string) (domain.Result, domain.Status) {
	status := domain.NewStatus()
	status.Source = domain.SourceHoldingsCSV

	raw = strings.TrimPrefix(raw, "\ufeff")
	delim := DetectDelimiter(sampleLines(raw, sniffLines))
	status.Delimiter = string(delim)

	rows := readRows(raw, delim)
	if len(rows) == 0 {
		status.Fail(ps.p.Sprintf(i18n.CSVEmpty))
		return domain.EmptyResult(), status
	}

	status.Headers = rows[0]
	columns := MapHeader(rows[0])
	if !columns.HasAnyValueField() {
		status.Fail(ps.p.Sprintf(i18n.CSVSecuritiesList))
	}

	holdings := make([]domain.Holding, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		holdings = append(holdings, ps.holdingFromRow(columns, row))
	}

	return portfolio.NewResult(holdings), status
}

func (ps *Parser) holdingFromRow(columns ColumnMap, row []string) domain.Holding {
	h := domain.Holding{
		Name:     columns.Get(row, FieldName),
		Ticker:   columns.Get(row, FieldTicker),
		Quantity: domain.ParseNumber(columns.Get(row, FieldQuantity)),
		Price:    domain.ParseNumber(columns.Get(row, FieldPrice)),
		Value:    domain.ParseNumber(columns.Get(row, FieldValue)),
		Cost:     domain.ParseNumber(columns.Get(row, FieldCost)),
		GainAbs:  domain.ParseNumber(columns.Get(row, FieldGainAbs)),
		GainPct:  domain.ParseNumber(columns.Get(row, FieldGainPct)),
		Currency: columns.Get(row, FieldCurrency),
	}

	if h.Value == 0 && h.Quantity*h.Price > 0 {
		h.Value = h.Quantity * h.Price
	}
	if h.GainAbs == 0 && h.Value != 0 && h.Cost != 0 {
		h.GainAbs = h.Value - h.Cost
	}
	if h.Cost == 0 && h.Value != 0 && h.GainAbs != 0 {
		h.Cost = h.Value - h.GainAbs
	}

	if h.Name == "" {
		h.Name = ps.p.Sprintf(i18n.UnknownName)
	}
	if h.Ticker == "" {
		h.Ticker = h.Name
	}
	if h.Currency == "" {
		h.Currency = domain.DefaultCurrency
	}
	return h
}

// readRows reads every record it can. Rows may have differing field counts.
// A malformed record stops reading; the rows before it are kept.
func readRows(raw string, delim rune) [][]string {
	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("csv: stopped reading at malformed record", "rows", len(rows), "error", err)
			break
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(row []string) bool {
	return lo.EveryBy(row, func(cell string) bool {
		return strings.TrimSpace(cell) == ""
	})
}
