package csvimport

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
	"github.com/badmin-c/pp-portfolio/internal/portfolio"
)

// unknownKey groups transactions that carry no identifying column value.
const unknownKey = "unknown"

var transactionSigns = map[string]int{
	"buy":               portfolio.Opening,
	"kauf":              portfolio.Opening,
	"einlieferung":      portfolio.Opening,
	"delivery inbound":  portfolio.Opening,
	"delivery_inbound":  portfolio.Opening,
	"inbound delivery":  portfolio.Opening,
	"sell":              portfolio.Closing,
	"verkauf":           portfolio.Closing,
	"auslieferung":      portfolio.Closing,
	"delivery outbound": portfolio.Closing,
	"delivery_outbound": portfolio.Closing,
	"outbound delivery": portfolio.Closing,
}

// ParseTransactions parses a transaction ledger with the default language.
func ParseTransactions(raw string) (domain.Result, domain.Status) {
	return NewParser(nil).ParseTransactions(raw)
}

// ParseTransactions replays a transaction ledger into open positions.
//
// Buys and inbound deliveries add shares and cost, sells and outbound deliveries
// subtract them; every other type is ignored. A ledger has no market prices, so
// the holdings carry cost only.
func (ps *Parser) ParseTransactions(raw string) (domain.Result, domain.Status) {
	status := domain.NewStatus()
	status.Source = domain.SourceTransactionCSV

	raw = strings.TrimPrefix(raw, "\ufeff")
	delim := DetectDelimiter(sampleLines(raw, sniffLines))
	status.Delimiter = string(delim)

	rows := readRows(raw, delim)
	if len(rows) == 0 {
		status.Fail(ps.p.Sprintf(i18n.CSVEmpty))
		return domain.EmptyResult(), status
	}

	status.Headers = rows[0]
	columns := MapTransactionHeader(rows[0])
	identified := columns.Has(FieldTicker) || columns.Has(FieldISIN) || columns.Has(FieldName)
	if !columns.Has(FieldType) || !columns.Has(FieldShares) || !identified {
		status.Fail(ps.p.Sprintf(i18n.TxMissingColumns))
		return domain.EmptyResult(), status
	}

	acc := portfolio.NewAccumulator()
	for _, row := range rows[1:] {
		sign, ok := transactionSigns[strings.ToLower(columns.Get(row, FieldType))]
		if !ok {
			continue
		}

		ticker := columns.Get(row, FieldTicker)
		isin := columns.Get(row, FieldISIN)
		name := columns.Get(row, FieldName)

		sec := portfolio.Security{
			Name:     name,
			Ticker:   lo.CoalesceOrEmpty(ticker, isin),
			Currency: columns.Get(row, FieldCurrency),
		}
		shares := math.Abs(domain.ParseNumber(columns.Get(row, FieldShares)))
		amount := math.Abs(domain.ParseNumber(columns.Get(row, FieldAmount)))

		acc.Add(lo.CoalesceOrEmpty(ticker, isin, name, unknownKey), sec, sign, shares, amount)
	}

	open := acc.Open()
	holdings := make([]domain.Holding, 0, len(open))
	for _, pos := range open {
		h := domain.Holding{
			Name:     pos.Security.Name,
			Ticker:   lo.CoalesceOrEmpty(pos.Security.Ticker, pos.Key),
			Quantity: pos.Shares,
			Cost:     pos.Cost,
			Currency: lo.CoalesceOrEmpty(pos.Security.Currency, domain.DefaultCurrency),
		}
		if h.Name == "" {
			h.Name = ps.p.Sprintf(i18n.UnknownName)
		}
		holdings = append(holdings, h)
	}

	status.Message = ps.p.Sprintf(i18n.TxUnpriced, len(holdings))
	return portfolio.NewResult(holdings), status
}
