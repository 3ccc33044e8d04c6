package market

import (
	"context"
	"fmt"
)

// Normalizer converts raw provider observations into canonical metrics via
// catalog resolution. An observation whose ticker the catalog does not know
// is surfaced as an error carrying ErrMarketNotFound; the caller treats that
// as a per-item skip, never as a run failure.
type Normalizer struct {
	resolver *Resolver
}

func NewNormalizer(resolver *Resolver) *Normalizer {
	return &Normalizer{resolver: resolver}
}

// Normalize builds a Metric from sm. Provenance, price, volume and the
// observation timestamp are copied verbatim; IsSignal starts false and the
// identifier and creation timestamp stay zero until the persistence stage
// assigns them.
func (n *Normalizer) Normalize(ctx context.Context, sm SourceMetric) (Metric, error) {
	m, err := n.resolver.Resolve(ctx, sm.Market)
	if err != nil {
		return Metric{}, fmt.Errorf("normalize: %w", err)
	}
	return Metric{
		Source:   sm.Source,
		IsSignal: false,
		Price:    sm.Price,
		Volume:   sm.Volume,
		MarketID: m.ID,
		Datetime: sm.Datetime,
	}, nil
}
