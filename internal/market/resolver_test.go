package market_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/store/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *sqlite.SqliteStore {
	t.Helper()
	st, err := sqlite.NewSqliteStore(filepath.Join(t.TempDir(), "bicklebow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func registerGazprom(t *testing.T, st *sqlite.SqliteStore) market.Market {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.Markets().InsertIfAbsent(ctx, market.Market{
		Ticker: "GAZP",
		Label:  "Gazprom",
		Figi:   "BBG004730RP0",
	}))
	m, err := st.Markets().GetByTicker(ctx, "GAZP")
	require.NoError(t, err)
	return m
}

func TestResolveIsDeterministic(t *testing.T) {
	st := newCatalog(t)
	registered := registerGazprom(t, st)
	resolver := market.NewResolver(st.Markets())
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "GAZP")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "GAZP")
	require.NoError(t, err)

	assert.Equal(t, registered.ID, first.ID)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolveUnknownTicker(t *testing.T) {
	st := newCatalog(t)
	registerGazprom(t, st)
	resolver := market.NewResolver(st.Markets())

	_, err := resolver.Resolve(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, market.ErrMarketNotFound)

	_, err = resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, market.ErrMarketNotFound)
}

func TestResolveSourceMarket(t *testing.T) {
	st := newCatalog(t)
	registered := registerGazprom(t, st)
	resolver := market.NewResolver(st.Markets())

	m, err := resolver.ResolveSourceMarket(context.Background(), market.SourceMarket{
		Ticker: "GAZP",
		Figi:   "some-other-ref",
	})
	require.NoError(t, err)
	// Identity keys on ticker, never on the provider reference.
	assert.Equal(t, registered.ID, m.ID)
	assert.Equal(t, "BBG004730RP0", m.Figi)
}
