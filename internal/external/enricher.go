package external

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/portfolio"
)

// DefaultBatchSize is the largest number of symbols sent in one quote request.
const DefaultBatchSize = 40

// QuoteSource fetches quotes for a batch of symbols.
type QuoteSource interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error)
}

// Enricher fills missing prices from a QuoteSource.
type Enricher struct {
	source    QuoteSource
	batchSize int
}

// NewEnricher creates an Enricher. batchSize is capped at DefaultBatchSize; a
// non-positive value uses it.
func NewEnricher(source QuoteSource, batchSize int) *Enricher {
	if batchSize > DefaultBatchSize {
		slog.Warn("Enricher: batch size above limit, capping", "configured", batchSize, "limit", DefaultBatchSize)
	}
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	return &Enricher{source: source, batchSize: batchSize}
}

// Enrich returns a copy of holdings with prices looked up for every ticker that has
// none yet. Each batch is tried once; a failed batch leaves its holdings unpriced.
// Only holdings whose value was filled from a quote get their gain recomputed.
func (e *Enricher) Enrich(ctx context.Context, holdings []domain.Holding) []domain.Holding {
	out := make([]domain.Holding, len(holdings))
	copy(out, holdings)

	symbols := lo.Uniq(lo.FilterMap(out, func(h domain.Holding, _ int) (string, bool) {
		return strings.ToUpper(h.Ticker), h.Ticker != "" && h.Price == 0
	}))

	quotes := make(map[string]Quote, len(symbols))
	for _, batch := range lo.Chunk(symbols, e.batchSize) {
		fetched, err := e.source.FetchQuotes(ctx, batch)
		if err != nil {
			slog.Warn("Enricher: quote batch failed", "symbols", len(batch), "error", err)
			continue
		}
		for _, q := range fetched {
			quotes[strings.ToUpper(q.Symbol)] = q
		}
	}

	priced := 0
	for i := range out {
		h := &out[i]
		if h.Ticker == "" || h.Price != 0 {
			continue
		}
		q, ok := quotes[strings.ToUpper(h.Ticker)]
		if !ok {
			continue
		}
		h.Price = q.Price()
		if h.Price != 0 {
			priced++
		}
		if h.Currency == "" && q.Currency != "" {
			h.Currency = q.Currency
		}
		if h.Quantity > 0 && h.Value == 0 && h.Price != 0 {
			h.Value = h.Price * h.Quantity
			*h = portfolio.Revalue(*h)
		}
	}

	slog.Info("Enricher: quotes applied", "symbols", len(symbols), "quotes", len(quotes), "priced", priced)
	return out
}
