package ppxml

import (
	"encoding/xml"
	"math"
	"strings"
	"testing"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
)

const clientXML = `<?xml version="1.0" encoding="UTF-8"?>
<client>
  <version>56</version>
  <baseCurrency>EUR</baseCurrency>
  <securities>
    <security>
      <uuid>11111111-aaaa</uuid>
      <name>Alpha AG</name>
      <currencyCode>EUR</currencyCode>
      <isin>DE0000000001</isin>
      <prices>
        <price t="2024-01-01" v="10000000000"/>
        <price t="2024-01-02" v="12345000000"/>
      </prices>
    </security>
    <security>
      <uuid>22222222-bbbb</uuid>
      <name>Beta Inc</name>
      <currencyCode>USD</currencyCode>
      <tickerSymbol>BETA</tickerSymbol>
      <isin>US0000000002</isin>
    </security>
  </securities>
  <portfolios>
    <portfolio>
      <name>Depot</name>
      <transactions>
        <portfolio-transaction>
          <date>2024-01-01T00:00</date>
          <amount>10000</amount>
          <security reference="../../../../../securities/security"/>
          <shares>2000000000</shares>
          <type>BUY</type>
        </portfolio-transaction>
        <portfolio-transaction>
          <amount>50000</amount>
          <security reference="../../../../../securities/security[2]"/>
          <shares>5000000000</shares>
          <type>delivery_inbound</type>
        </portfolio-transaction>
        <portfolio-transaction>
          <amount>20000</amount>
          <security reference="../../../../../securities/security[2]"/>
          <shares>2000000000</shares>
          <type>SELL</type>
        </portfolio-transaction>
        <portfolio-transaction>
          <amount>999</amount>
          <security reference="../../../../../securities/security[7]"/>
          <shares>1000000000</shares>
          <type>BUY</type>
        </portfolio-transaction>
        <portfolio-transaction>
          <amount>500</amount>
          <security reference="../../../../../securities/security[1]"/>
          <shares>0</shares>
          <type>DIVIDENDS</type>
        </portfolio-transaction>
      </transactions>
    </portfolio>
  </portfolios>
</client>`

func TestParseReplaysTransactions(t *testing.T) {
	result, status := Parse(strings.NewReader(clientXML))

	if !status.OK {
		t.Fatalf("status not ok: %s", status.Message)
	}
	if status.Message != "XML ok: 2 Positionen." {
		t.Errorf("Message = %q", status.Message)
	}
	if status.Source != domain.SourceXML {
		t.Errorf("Source = %q, want %q", status.Source, domain.SourceXML)
	}
	if len(status.Headers) != 0 || status.Delimiter != "" {
		t.Errorf("headers/delimiter = %v/%q, want none", status.Headers, status.Delimiter)
	}
	if len(result.Holdings) != 2 {
		t.Fatalf("holdings = %d, want 2", len(result.Holdings))
	}

	alpha := result.Holdings[0]
	if alpha.Name != "Alpha AG" {
		t.Errorf("Name = %q, want Alpha AG", alpha.Name)
	}
	if alpha.Ticker != "DE0000000001" {
		t.Errorf("Ticker = %q, want isin when no ticker symbol", alpha.Ticker)
	}
	if alpha.Quantity != 2 || alpha.Cost != 100 {
		t.Errorf("quantity/cost = %v/%v, want 2/100", alpha.Quantity, alpha.Cost)
	}
	if alpha.Price != 123.45 {
		t.Errorf("Price = %v, want last price 123.45", alpha.Price)
	}
	if !approx(alpha.Value, 246.9) || !approx(alpha.GainAbs, 146.9) || !approx(alpha.GainPct, 146.9) {
		t.Errorf("value/gain/pct = %v/%v/%v, want 246.9/146.9/146.9", alpha.Value, alpha.GainAbs, alpha.GainPct)
	}
	if alpha.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", alpha.Currency)
	}

	beta := result.Holdings[1]
	if beta.Ticker != "BETA" || beta.Quantity != 3 || beta.Cost != 300 {
		t.Errorf("beta = %+v, want BETA 3 shares cost 300", beta)
	}
	if beta.Price != 0 {
		t.Errorf("Price = %v, want 0 without price history", beta.Price)
	}
	if beta.GainAbs != -300 {
		t.Errorf("GainAbs = %v, want -300", beta.GainAbs)
	}
	if beta.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", beta.Currency)
	}

	if !approx(result.Totals.Value, 246.9) {
		t.Errorf("Totals.Value = %v, want 246.9", result.Totals.Value)
	}
	if result.Totals.Cost != 400 {
		t.Errorf("Totals.Cost = %v, want 400", result.Totals.Cost)
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestParseDropsClosedPositions(t *testing.T) {
	doc := `<client><securities><security><uuid>u1</uuid><name>Gone</name></security></securities>
<portfolio-transaction><amount>100</amount><security reference="securities/security[1]"/><shares>100000000</shares><type>BUY</type></portfolio-transaction>
<portfolio-transaction><amount>150</amount><security reference="securities/security[1]"/><shares>100000000</shares><type>SELL</type></portfolio-transaction>
</client>`

	result, status := NewParser(i18n.NewPrinter("en")).Parse(strings.NewReader(doc))

	if status.OK {
		t.Error("status ok without open positions")
	}
	if status.Message != "PP XML detected, but no holding transactions found." {
		t.Errorf("Message = %q", status.Message)
	}
	if result.Holdings == nil || len(result.Holdings) != 0 {
		t.Errorf("Holdings = %#v, want empty non-nil slice", result.Holdings)
	}
}

func TestParseSecurityDefaults(t *testing.T) {
	doc := `<client><securities><security></security></securities>
<portfolio-transaction><amount>100</amount><security reference="securities/security[1]"/><shares>1000000000</shares><type>buy</type></portfolio-transaction>
</client>`

	result, status := Parse(strings.NewReader(doc))

	if !status.OK {
		t.Fatalf("status not ok: %s", status.Message)
	}
	if len(result.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(result.Holdings))
	}
	h := result.Holdings[0]
	if h.Name != "Unbekannt" || h.Ticker != "Unbekannt" {
		t.Errorf("name/ticker = %q/%q, want Unbekannt/Unbekannt", h.Name, h.Ticker)
	}
	if h.Currency != domain.DefaultCurrency {
		t.Errorf("Currency = %q, want %q", h.Currency, domain.DefaultCurrency)
	}
}

func TestParseMalformed(t *testing.T) {
	result, status := Parse(strings.NewReader("<client><securities>"))

	if status.OK {
		t.Error("status ok for truncated document")
	}
	if !strings.Contains(status.Message, "XML konnte nicht gelesen werden") {
		t.Errorf("Message = %q", status.Message)
	}
	if len(result.Holdings) != 0 || result.Totals != (domain.Totals{}) {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestParseLatin1Declaration(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><client><securities><security><name>M\xfcller</name></security></securities>" +
		`<portfolio-transaction><amount>100</amount><security reference="securities/security[1]"/><shares>1000000000</shares><type>BUY</type></portfolio-transaction></client>`

	result, status := Parse(strings.NewReader(doc))

	if !status.OK {
		t.Fatalf("status not ok: %s", status.Message)
	}
	if result.Holdings[0].Name != "Müller" {
		t.Errorf("Name = %q, want Müller", result.Holdings[0].Name)
	}
}

func TestResolveSecurity(t *testing.T) {
	securities := []*node{{Text: "a"}, {Text: "b"}}

	tests := []struct {
		ref  string
		want string
	}{
		{"../../../../securities/security[2]", "b"},
		{"securities/security[1]", "a"},
		{"../../securities/security", "a"},
		{"securities/security[0]", ""},
		{"securities/security[3]", ""},
		{"securities/security[x]", ""},
		{"portfolios/portfolio[1]", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got := resolveSecurity(securities, tt.ref)
			if tt.want == "" {
				if got != nil {
					t.Errorf("resolveSecurity() = %q, want nil", got.Text)
				}
				return
			}
			if got == nil {
				t.Fatalf("resolveSecurity() = nil, want %q", tt.want)
			}
			if got.Text != tt.want {
				t.Errorf("resolveSecurity() = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestLatestPriceScale(t *testing.T) {
	tests := []struct {
		name string
		v    string
		want float64
	}{
		{"eight decimal places", "12345000000", 123.45},
		{"first fitting scale wins", "12345", 0.012345},
		{"only hundredths fit", "5", 0.05},
		{"too large for any scale", "500000000000000000", 5e17},
		{"zero falls back to raw", "0", 0},
		{"not a number", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec := &node{Nodes: []node{{
				XMLName: xml.Name{Local: "prices"},
				Nodes: []node{{
					XMLName: xml.Name{Local: "price"},
					Attrs:   []xml.Attr{{Name: xml.Name{Local: "v"}, Value: tt.v}},
				}},
			}}}
			if got := latestPrice(sec); got != tt.want {
				t.Errorf("latestPrice(%s) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestScaled(t *testing.T) {
	tests := []struct {
		raw  string
		exp  int32
		want float64
	}{
		{"2000000000", sharesExponent, 2},
		{"10000", amountExponent, 100},
		{"", amountExponent, 0},
		{"n/a", amountExponent, 0},
	}
	for _, tt := range tests {
		if got := scaled(tt.raw, tt.exp); got != tt.want {
			t.Errorf("scaled(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
