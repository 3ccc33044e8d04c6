package watchlist

import (
	"context"

	"github.com/desprit/bicklebow/internal/market"
)

const sourceName = "watchlist"

// MarketsSource exposes the registry as a market source. Like every source it
// only yields raw references; whether a ticker is actually known is decided
// by catalog resolution in the pipeline.
type MarketsSource struct {
	registry *Registry
}

func NewMarketsSource(registry *Registry) *MarketsSource {
	return &MarketsSource{registry: registry}
}

func (s *MarketsSource) Name() string { return sourceName }

func (s *MarketsSource) ListMarkets(ctx context.Context) ([]market.SourceMarket, error) {
	snap := s.registry.Snapshot()
	out := make([]market.SourceMarket, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		out = append(out, market.SourceMarket{Ticker: e.Ticker, Figi: e.Figi})
	}
	return out, nil
}
