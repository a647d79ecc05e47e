package portfolio

import (
	"math"
	"testing"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

func TestCalculateTotals(t *testing.T) {
	holdings := []domain.Holding{
		{Value: 100, Cost: 80, GainAbs: 20},
		{Value: 50, Cost: 50, GainAbs: 0},
	}

	totals := CalculateTotals(holdings)

	if totals.Value != 150 {
		t.Errorf("Value = %v, want 150", totals.Value)
	}
	if totals.Cost != 130 {
		t.Errorf("Cost = %v, want 130", totals.Cost)
	}
	if totals.GainAbs != 20 {
		t.Errorf("GainAbs = %v, want 20", totals.GainAbs)
	}
	// 20/130*100
	if math.Abs(totals.GainPct-15.3846) > 0.001 {
		t.Errorf("GainPct = %v, want ~15.38", totals.GainPct)
	}
}

func TestCalculateTotalsZeroCost(t *testing.T) {
	totals := CalculateTotals([]domain.Holding{{Value: 10, GainAbs: 10}})
	if totals.GainPct != 0 {
		t.Errorf("GainPct with zero cost = %v, want 0", totals.GainPct)
	}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	totals := CalculateTotals(nil)
	if totals != (domain.Totals{}) {
		t.Errorf("totals of nothing = %+v, want zero", totals)
	}
}

func TestNewResultNeverNil(t *testing.T) {
	r := NewResult(nil)
	if r.Holdings == nil {
		t.Fatal("Holdings is nil, want empty slice")
	}
}

func TestRevalue(t *testing.T) {
	h := Revalue(domain.Holding{Value: 120, Cost: 100, GainAbs: 999, GainPct: 999})
	if h.GainAbs != 20 {
		t.Errorf("GainAbs = %v, want 20", h.GainAbs)
	}
	if h.GainPct != 20 {
		t.Errorf("GainPct = %v, want 20", h.GainPct)
	}
}
