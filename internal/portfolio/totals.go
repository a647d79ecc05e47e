package portfolio

import (
	"github.com/samber/lo"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

// CalculateTotals sums value, cost and gain over the holdings and derives the
// portfolio gain percentage from the summed cost.
func CalculateTotals(holdings []domain.Holding) domain.Totals {
	totals := lo.Reduce(holdings, func(acc domain.Totals, h domain.Holding, _ int) domain.Totals {
		acc.Value += h.Value
		acc.Cost += h.Cost
		acc.GainAbs += h.GainAbs
		return acc
	}, domain.Totals{})

	totals.GainPct = domain.GainPercent(totals.GainAbs, totals.Cost)
	return totals
}

// NewResult wraps holdings and their totals, keeping the holdings slice non-nil.
func NewResult(holdings []domain.Holding) domain.Result {
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	return domain.Result{Holdings: holdings, Totals: CalculateTotals(holdings)}
}

// Revalue recomputes a holding's gain from its current value and cost.
func Revalue(h domain.Holding) domain.Holding {
	h.GainAbs = h.Value - h.Cost
	h.GainPct = domain.GainPercent(h.GainAbs, h.Cost)
	return h
}
