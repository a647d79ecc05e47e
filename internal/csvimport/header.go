package csvimport

import (
	"strings"

	"github.com/samber/lo"
)

// Field is a canonical column meaning.
type Field string

// Holdings export fields.
const (
	FieldName     Field = "name"
	FieldTicker   Field = "ticker"
	FieldQuantity Field = "quantity"
	FieldPrice    Field = "price"
	FieldCost     Field = "cost"
	FieldValue    Field = "value"
	FieldGainAbs  Field = "gain_abs"
	FieldGainPct  Field = "gain_pct"
	FieldCurrency Field = "currency"
)

// Transaction ledger fields. Name, ticker and currency are shared with holdings.
const (
	FieldType   Field = "type"
	FieldShares Field = "shares"
	FieldAmount Field = "amount"
	FieldISIN   Field = "isin"
)

type alias struct {
	field   Field
	headers []string
}

// holdingAliases covers the German and English Portfolio Performance holdings exports.
var holdingAliases = []alias{
	{FieldName, []string{"name", "wertpapier", "wertpapiername", "security", "instrument"}},
	{FieldTicker, []string{"ticker", "ticker-symbol", "symbol", "isin"}},
	{FieldQuantity, []string{"bestand", "stück", "menge", "anzahl", "quantity", "shares"}},
	{FieldPrice, []string{"kurs", "preis", "price"}},
	{FieldCost, []string{"einstandspreis", "einstand", "investiert", "kaufwert", "einstandswert", "cost", "cost basis", "purchase value"}},
	{FieldValue, []string{"marktwert", "wert", "aktueller wert", "positionswert", "market value", "value"}},
	{FieldGainAbs, []string{"gewinn/verlust", "gewinn", "verlust", "p&l", "gain", "profit"}},
	{FieldGainPct, []string{"gewinn/verlust %", "gewinn %", "verlust %", "p&l %", "gain %", "performance %"}},
	{FieldCurrency, []string{"währung", "currency"}},
}

var transactionAliases = []alias{
	{FieldType, []string{"typ", "type", "transaktionstyp", "buchungsart", "art", "transaction type"}},
	{FieldShares, []string{"stück", "anteile", "shares", "quantity", "menge", "anzahl"}},
	{FieldAmount, []string{"betrag", "wert", "amount", "value", "gesamtbetrag"}},
	{FieldISIN, []string{"isin"}},
	{FieldTicker, []string{"ticker", "ticker-symbol", "symbol"}},
	{FieldName, []string{"wertpapier", "wertpapiername", "name", "security"}},
	{FieldCurrency, []string{"währung", "currency", "transaktionswährung"}},
}

// valueFields are the holdings fields that carry an amount; a header without any
// of them is not a holdings export.
var valueFields = []Field{FieldValue, FieldQuantity, FieldPrice, FieldCost, FieldGainAbs, FieldGainPct}

// ColumnMap maps canonical fields to column indexes.
type ColumnMap map[Field]int

// MapHeader maps a holdings header row to canonical fields.
func MapHeader(header []string) ColumnMap {
	return mapHeader(header, holdingAliases)
}

// MapTransactionHeader maps a transaction ledger header row to canonical fields.
func MapTransactionHeader(header []string) ColumnMap {
	return mapHeader(header, transactionAliases)
}

func mapHeader(header []string, table []alias) ColumnMap {
	normalized := lo.Map(header, func(h string, _ int) string {
		return normalizeHeader(h)
	})

	m := make(ColumnMap)
	for _, a := range table {
		for i, h := range normalized {
			if lo.Contains(a.headers, h) {
				m[a.field] = i
				break
			}
		}
	}
	return m
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// Has reports whether f was found in the header.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Get returns the trimmed cell for f, or "" when f is unmapped or the row is short.
func (m ColumnMap) Get(row []string, f Field) string {
	i, ok := m[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// HasAnyValueField reports whether any amount-carrying holdings field was found.
func (m ColumnMap) HasAnyValueField() bool {
	return lo.SomeBy(valueFields, m.Has)
}
