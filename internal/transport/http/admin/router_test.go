package adminhttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/store/sqlite"
	adminhttp "github.com/desprit/bicklebow/internal/transport/http/admin"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestAPI(t *testing.T) (*gin.Engine, *sqlite.SqliteStore) {
	t.Helper()
	st, err := sqlite.NewSqliteStore(filepath.Join(t.TempDir(), "bicklebow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	adminhttp.NewRouter(st).Register(engine.Group("/api"))
	return engine, st
}

func seedMarket(t *testing.T, st *sqlite.SqliteStore, m market.Market) market.Market {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.Markets().InsertIfAbsent(ctx, m))
	stored, err := st.Markets().GetByTicker(ctx, m.Ticker)
	require.NoError(t, err)
	return stored
}

func seedMetric(t *testing.T, st *sqlite.SqliteStore, metric market.Metric) market.Metric {
	t.Helper()
	require.NoError(t, st.Metrics().Insert(context.Background(), &metric))
	return metric
}

func get(t *testing.T, engine *gin.Engine, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func TestListMarkets(t *testing.T) {
	engine, st := newTestAPI(t)
	seedMarket(t, st, market.Market{Ticker: "GAZP", Label: "Gazprom", Figi: "BBG004730RP0", Priority: 5})
	seedMarket(t, st, market.Market{Ticker: "YNDX", Label: "Yandex"})

	code, body := get(t, engine, "/api/markets")
	require.Equal(t, http.StatusOK, code)

	markets := gjson.Get(body, "markets")
	assert.Equal(t, int64(2), markets.Get("#").Int())
	assert.Equal(t, "GAZP", markets.Get("0.ticker").String())
	assert.Equal(t, "BBG004730RP0", markets.Get("0.figi").String())
	assert.Equal(t, int64(5), markets.Get("0.priority").Int())
}

func TestMarketMetrics(t *testing.T) {
	engine, st := newTestAPI(t)
	gazp := seedMarket(t, st, market.Market{Ticker: "GAZP", Label: "Gazprom"})
	seedMetric(t, st, market.Metric{
		MarketID: gazp.ID,
		Source:   "tinkoff",
		Price:    130000,
		Volume:   1000,
		Datetime: time.Date(2022, 2, 1, 4, 0, 0, 0, time.UTC),
	})

	t.Run("known ticker", func(t *testing.T) {
		code, body := get(t, engine, "/api/markets/GAZP/metrics")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "GAZP", gjson.Get(body, "market.ticker").String())
		metrics := gjson.Get(body, "metrics")
		require.Equal(t, int64(1), metrics.Get("#").Int())
		assert.Equal(t, 130000.0, metrics.Get("0.price").Float())
		assert.Equal(t, "2022-02-01T04:00:00Z", metrics.Get("0.datetime").String())
	})

	t.Run("unknown ticker", func(t *testing.T) {
		code, _ := get(t, engine, "/api/markets/NOPE/metrics")
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestListSignals(t *testing.T) {
	engine, st := newTestAPI(t)
	gazp := seedMarket(t, st, market.Market{Ticker: "GAZP"})

	seedMetric(t, st, market.Metric{
		MarketID: gazp.ID,
		Source:   "tinkoff",
		Datetime: time.Date(2022, 2, 1, 3, 0, 0, 0, time.UTC),
	})
	flagged := seedMetric(t, st, market.Metric{
		MarketID: gazp.ID,
		Source:   "tinkoff",
		Price:    130000,
		Datetime: time.Date(2022, 2, 1, 4, 0, 0, 0, time.UTC),
	})
	require.NoError(t, st.Metrics().SetSignal(context.Background(), flagged.ID, true))

	code, body := get(t, engine, "/api/signals")
	require.Equal(t, http.StatusOK, code)

	signals := gjson.Get(body, "signals")
	require.Equal(t, int64(1), signals.Get("#").Int())
	assert.Equal(t, flagged.ID, signals.Get("0.id").Int())
	assert.True(t, signals.Get("0.is_signal").Bool())
}

func TestListSignalsHonorsLimit(t *testing.T) {
	engine, st := newTestAPI(t)
	gazp := seedMarket(t, st, market.Market{Ticker: "GAZP"})
	for i := 0; i < 3; i++ {
		m := seedMetric(t, st, market.Metric{
			MarketID: gazp.ID,
			Source:   "tinkoff",
			Datetime: time.Date(2022, 2, 1, 4, i, 0, 0, time.UTC),
		})
		require.NoError(t, st.Metrics().SetSignal(context.Background(), m.ID, true))
	}

	code, body := get(t, engine, "/api/signals?limit=2")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2), gjson.Get(body, "signals.#").Int())

	// Garbage limits fall back to the default instead of failing.
	code, body = get(t, engine, "/api/signals?limit=bogus")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(3), gjson.Get(body, "signals.#").Int())
}
