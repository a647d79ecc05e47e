// Package ppxml reads Portfolio Performance XML files and .portfolio containers
// by replaying their portfolio transactions into open positions.
package ppxml

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/message"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
	"github.com/badmin-c/pp-portfolio/internal/portfolio"
)

const (
	sharesExponent = -9
	amountExponent = -2
	unknownKey     = "unknown"
)

var (
	securityRef = regexp.MustCompile(`securities/security\[(\d+)\]`)

	transactionSigns = map[string]int{
		"BUY":               portfolio.Opening,
		"DELIVERY_INBOUND":  portfolio.Opening,
		"SELL":              portfolio.Closing,
		"DELIVERY_OUTBOUND": portfolio.Closing,
	}

	// Price scales tried in order; the first one landing in [minPrice, maxPrice] wins.
	priceExponents = []int32{-8, -7, -6, -5, -4, -3, -2, -1, 0}
	minPrice       = decimal.RequireFromString("0.01")
	maxPrice       = decimal.NewFromInt(1_000_000)
)

// Parser reads PP XML, writing status messages through its printer.
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

// Parse reads a PP XML document with the default language.
func Parse(r io.Reader) (domain.Result, domain.Status) {
	return NewParser(nil).Parse(r)
}

// Parse replays the document's portfolio transactions against its securities list.
// Malformed documents and documents without open positions yield a not-ok status.
func (ps *Parser) Parse(r io.Reader) (domain.Result, domain.Status) {
	status := domain.NewStatus()
	status.Source = domain.SourceXML

	root, err := decodeTree(r)
	if err != nil {
		status.Fail(ps.p.Sprintf(i18n.XMLUnreadable, err))
		return domain.EmptyResult(), status
	}

	securities := root.descendants("securities", "security")
	owners := make(map[string]*node)
	acc := portfolio.NewAccumulator()

	for _, tx := range root.descendants("", "portfolio-transaction") {
		sign, ok := transactionSigns[strings.ToUpper(tx.childText("type"))]
		if !ok {
			continue
		}
		ref := tx.child("security")
		if ref == nil {
			continue
		}
		refPath, ok := ref.attr("reference")
		if !ok {
			continue
		}
		sec := resolveSecurity(securities, refPath)
		if sec == nil {
			continue
		}

		key := lo.CoalesceOrEmpty(sec.childText("uuid"), sec.childText("name"), unknownKey)
		if _, seen := owners[key]; !seen {
			owners[key] = sec
		}
		acc.Add(key, ps.describe(sec), sign,
			scaled(tx.childText("shares"), sharesExponent),
			scaled(tx.childText("amount"), amountExponent))
	}

	open := acc.Open()
	holdings := make([]domain.Holding, 0, len(open))
	for _, pos := range open {
		price := latestPrice(owners[pos.Key])
		holdings = append(holdings, portfolio.Revalue(domain.Holding{
			Name:     pos.Security.Name,
			Ticker:   pos.Security.Ticker,
			Quantity: pos.Shares,
			Price:    price,
			Value:    pos.Shares * price,
			Cost:     pos.Cost,
			Currency: pos.Security.Currency,
		}))
	}

	if len(holdings) == 0 {
		status.Fail(ps.p.Sprintf(i18n.XMLNoPositions))
	} else {
		status.Message = ps.p.Sprintf(i18n.XMLOK, len(holdings))
	}
	return portfolio.NewResult(holdings), status
}

func (ps *Parser) describe(sec *node) portfolio.Security {
	name := sec.childText("name")
	if name == "" {
		name = ps.p.Sprintf(i18n.UnknownName)
	}
	return portfolio.Security{
		Name:     name,
		Ticker:   lo.CoalesceOrEmpty(sec.childText("tickerSymbol"), sec.childText("isin"), name),
		Currency: lo.CoalesceOrEmpty(sec.childText("currencyCode"), domain.DefaultCurrency),
	}
}

// resolveSecurity resolves a 1-based positional reference such as
// "../../../../securities/security[3]". A reference to the bare
// "securities/security" path points at the first entry.
func resolveSecurity(securities []*node, ref string) *node {
	idx := 1
	if m := securityRef.FindStringSubmatch(ref); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		idx = n
	} else if !strings.HasSuffix(ref, "securities/security") {
		return nil
	}

	if idx < 1 || idx > len(securities) {
		return nil
	}
	return securities[idx-1]
}

// scaled decodes a fixed-point integer text. Unparseable text is 0.
func scaled(text string, exp int32) float64 {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0
	}
	return d.Shift(exp).InexactFloat64()
}

// latestPrice decodes the last quote of a security's price history. The export's
// precision is not declared, so the first scale that yields a plausible price wins.
func latestPrice(sec *node) float64 {
	if sec == nil {
		return 0
	}
	prices := sec.descendants("prices", "price")
	if len(prices) == 0 {
		return 0
	}
	v, _ := prices[len(prices)-1].attr("v")
	raw, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}

	for _, exp := range priceExponents {
		p := decimal.New(raw, exp)
		if p.GreaterThanOrEqual(minPrice) && p.LessThanOrEqual(maxPrice) {
			return p.InexactFloat64()
		}
	}
	return float64(raw)
}
