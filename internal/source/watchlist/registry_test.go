package watchlist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/source/watchlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWatchlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validWatchlist = `watchlist:
  - ticker: GAZP
    label: Gazprom
    figi: BBG004730RP0
    risk: 2
    priority: 5
    category: BasicMaterials
  - ticker: YNDX
    label: Yandex
    priority: 3
    category: It
`

func TestRegistryLoadsEntries(t *testing.T) {
	r, err := watchlist.NewRegistry(writeWatchlist(t, validWatchlist))
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "GAZP", snap.Entries[0].Ticker)
	assert.Equal(t, "BBG004730RP0", snap.Entries[0].Figi)
	assert.Equal(t, 5, snap.Entries[0].Priority)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestRegistryDeduplicatesTickers(t *testing.T) {
	r, err := watchlist.NewRegistry(writeWatchlist(t, `watchlist:
  - ticker: GAZP
    priority: 5
  - ticker: GAZP
    priority: 1
  - ticker: "  "
`))
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap.Entries, 1)
	// First occurrence wins.
	assert.Equal(t, 5, snap.Entries[0].Priority)
}

func TestRegistryRejectsInvalidFiles(t *testing.T) {
	t.Run("missing watchlist key", func(t *testing.T) {
		_, err := watchlist.NewRegistry(writeWatchlist(t, `markets: []`))
		assert.Error(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := watchlist.NewRegistry(writeWatchlist(t, `watchlist:
  - ticker: GAZP
    category: Crypto
`))
		assert.Error(t, err)
	})

	t.Run("negative priority", func(t *testing.T) {
		_, err := watchlist.NewRegistry(writeWatchlist(t, `watchlist:
  - ticker: GAZP
    priority: -1
`))
		assert.Error(t, err)
	})

	t.Run("nonexistent file", func(t *testing.T) {
		_, err := watchlist.NewRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := watchlist.NewRegistry("")
		assert.Error(t, err)
	})
}

func TestRegistryMarketsRendersCatalogRecords(t *testing.T) {
	r, err := watchlist.NewRegistry(writeWatchlist(t, validWatchlist))
	require.NoError(t, err)

	markets := r.Markets()
	require.Len(t, markets, 2)
	assert.Equal(t, market.CategoryBasicMaterials, markets[0].Category)
	assert.Equal(t, "Gazprom", markets[0].Label)
	assert.Equal(t, market.CategoryIt, markets[1].Category)
}

func TestMarketsSourceListsRefs(t *testing.T) {
	r, err := watchlist.NewRegistry(writeWatchlist(t, validWatchlist))
	require.NoError(t, err)

	src := watchlist.NewMarketsSource(r)
	assert.Equal(t, "watchlist", src.Name())

	refs, err := src.ListMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "GAZP", refs[0].Ticker)
	assert.Equal(t, "BBG004730RP0", refs[0].Figi)
}
