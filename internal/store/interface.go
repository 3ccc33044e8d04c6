// Package store is the catalog persistence boundary: keyed access to the
// markets and metrics tables behind small repository interfaces so the
// pipeline never depends on a concrete database.
package store

import (
	"context"
	"time"

	"github.com/desprit/bicklebow/internal/market"
)

// Store is the entry point for catalog access.
type Store interface {
	// Markets returns the market repository.
	Markets() MarketRepository
	// Metrics returns the metric repository.
	Metrics() MetricRepository
	// Ping verifies the underlying connection is usable.
	Ping(ctx context.Context) error
	// Close closes the store connection.
	Close() error
}

// MarketRepository handles canonical market records. The catalog is
// append-only: there is no update or delete.
type MarketRepository interface {
	// InsertIfAbsent registers a market keyed on ticker. Registering an
	// already-known ticker is a no-op, not an error.
	InsertIfAbsent(ctx context.Context, m market.Market) error
	// GetByTicker returns the market with the exact ticker, or an error
	// wrapping market.ErrMarketNotFound.
	GetByTicker(ctx context.Context, ticker string) (market.Market, error)
	// List returns every registered market.
	List(ctx context.Context) ([]market.Market, error)
}

// MetricRepository handles persisted observations.
type MetricRepository interface {
	// Insert stores a metric and fills in its identifier and creation time.
	Insert(ctx context.Context, m *market.Metric) error
	// Exists reports whether a metric with the same market, provenance and
	// observation time is already stored.
	Exists(ctx context.Context, marketID int64, source string, datetime time.Time) (bool, error)
	// SetSignal updates the stored signal flag after classification.
	SetSignal(ctx context.Context, id int64, isSignal bool) error
	// ListByMarket returns up to limit metrics for a market, newest first.
	ListByMarket(ctx context.Context, marketID int64, limit int) ([]market.Metric, error)
	// ListSignals returns up to limit metrics flagged as signals, newest first.
	ListSignals(ctx context.Context, limit int) ([]market.Metric, error)
	// RecentPrices returns up to limit prices for a market, oldest first,
	// shaped for indicator math.
	RecentPrices(ctx context.Context, marketID int64, limit int) ([]float64, error)
}

// Migrator is implemented by stores that own their schema. It backs the
// one-shot init/teardown commands and is invoked once at process bootstrap.
type Migrator interface {
	Migrate(ctx context.Context) error
	Drop(ctx context.Context) error
}
