// Package report renders an ingestion result as a markdown document.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

// Markdown renders the holdings table and totals.
func Markdown(result domain.Result, status domain.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio\n\n")
	fmt.Fprintf(&b, "Status: **%s** (%s", status.State(), lo.CoalesceOrEmpty(string(status.Source), "-"))
	if !status.CheckedAt.IsZero() {
		fmt.Fprintf(&b, ", %s", status.CheckedAt.UTC().Format("2006-01-02 15:04 UTC"))
	}
	fmt.Fprintf(&b, ")\n\n")
	if status.Message != "" {
		fmt.Fprintf(&b, "> %s\n\n", status.Message)
	}

	if len(result.Holdings) == 0 {
		fmt.Fprintf(&b, "_No open positions._\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Name | Ticker | Quantity | Price | Value | Cost | Gain | Gain % |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, h := range result.Holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escape(h.Name),
			escape(h.Ticker),
			strconv.FormatFloat(h.Quantity, 'f', -1, 64),
			FormatMoney(h.Price, h.Currency),
			FormatMoney(h.Value, h.Currency),
			FormatMoney(h.Cost, h.Currency),
			FormatMoney(h.GainAbs, h.Currency),
			FormatPercent(h.GainPct),
		)
	}

	cur := totalsCurrency(result.Holdings)
	t := result.Totals
	fmt.Fprintf(&b, "| **Total** | | | | **%s** | **%s** | **%s** | **%s** |\n",
		FormatMoney(t.Value, cur),
		FormatMoney(t.Cost, cur),
		FormatMoney(t.GainAbs, cur),
		FormatPercent(t.GainPct),
	)
	return b.String()
}

// FormatMoney formats amount in the given ISO 4217 currency, e.g. "$1,234.56".
// Unknown or empty codes fall back to a plain two-decimal number.
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return strings.TrimSpace(fmt.Sprintf("%.2f %s", amount, currency))
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// FormatPercent formats a percentage with an explicit sign.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%+.2f %%", domain.Round2(pct))
}

// totalsCurrency returns the common currency of all holdings, or "" when mixed.
func totalsCurrency(holdings []domain.Holding) string {
	currencies := lo.Uniq(lo.Map(holdings, func(h domain.Holding, _ int) string { return h.Currency }))
	if len(currencies) == 1 {
		return currencies[0]
	}
	return ""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render formats markdown for a terminal. An empty style selects the automatic
// dark/light detection; "notty" gives plain output for pipes.
func Render(markdown, style string, wordWrap int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
