package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMarketNotFound reports a ticker the catalog has not registered yet.
// It is an expected, frequent condition: callers drop the item and move on.
var ErrMarketNotFound = errors.New("market not found")

// CatalogReader is the read-only slice of the store the resolver needs.
type CatalogReader interface {
	GetByTicker(ctx context.Context, ticker string) (Market, error)
}

// Resolver reconciles provider tickers against the local catalog. Resolution
// always keys on the exact ticker, never on provider references, so the same
// symbol yields the same market identifier once registered.
type Resolver struct {
	catalog CatalogReader
}

func NewResolver(catalog CatalogReader) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the canonical market for ticker, or an error wrapping
// ErrMarketNotFound when no catalog entry matches. Read-only.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (Market, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Market{}, fmt.Errorf("resolve: empty ticker: %w", ErrMarketNotFound)
	}
	m, err := r.catalog.GetByTicker(ctx, ticker)
	if err != nil {
		return Market{}, fmt.Errorf("resolve %q: %w", ticker, err)
	}
	return m, nil
}

// ResolveSourceMarket applies the same resolve-or-skip policy to a raw
// provider market reference.
func (r *Resolver) ResolveSourceMarket(ctx context.Context, sm SourceMarket) (Market, error) {
	return r.Resolve(ctx, sm.Ticker)
}
