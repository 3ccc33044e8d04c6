// Package source defines the capability contracts every provider plugin
// implements. Sources are stateless network clients: they never touch the
// catalog store, resolution is the pipeline's job.
package source

import (
	"context"
	"errors"

	"github.com/desprit/bicklebow/internal/market"
)

// ErrUnauthorized marks a terminal transport failure (credentials rejected).
// Partial per-market failures are handled inside the source and never
// surface through this.
var ErrUnauthorized = errors.New("provider rejected credentials")

// MarketSource produces a finite set of provider-native market references.
// A failed call degrades that source's contribution to empty; it never
// aborts a pipeline run on its own.
type MarketSource interface {
	Name() string
	ListMarkets(ctx context.Context) ([]market.SourceMarket, error)
}

// MetricSource fetches raw observations for a batch of canonical markets:
// at most one sample per (market, period) pair, the most recent within that
// period's look-back window. Markets without a usable external reference are
// skipped silently, and a provider failure on one market must not prevent
// the rest of the batch from being fetched.
type MetricSource interface {
	Name() string
	FetchMetrics(ctx context.Context, markets []market.Market) ([]market.SourceMetric, error)
}
