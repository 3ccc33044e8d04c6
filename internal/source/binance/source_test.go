package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desprit/bicklebow/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// klinePayload renders one kline row in the exchange wire format:
// [openTime, open, high, low, close, volume, closeTime, ...].
func klinePayload(openTime time.Time, open, close string, volume string) string {
	start := openTime.UnixMilli()
	end := openTime.Add(time.Minute).UnixMilli()
	return fmt.Sprintf(`[%d,"%s","9999","1","%s","%s",%d,"0",0,"0","0","0"]`,
		start, open, close, volume, end)
}

func newTestSource(t *testing.T, handler http.HandlerFunc) *MetricsSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src := NewMetricsSource(Config{RESTBaseURL: srv.URL})
	src.now = func() time.Time { return time.Date(2022, 2, 1, 4, 1, 0, 0, time.UTC) }
	return src
}

func TestFetchMetricsParsesKlines(t *testing.T) {
	open := time.Date(2022, 2, 1, 4, 0, 0, 0, time.UTC)
	var symbols []string
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		symbols = append(symbols, r.URL.Query().Get("symbol"))
		fmt.Fprintf(w, "[%s]", klinePayload(open, "120", "140", "1000.5"))
	})

	metrics, err := src.FetchMetrics(context.Background(), []market.Market{
		{Ticker: "BTC", Figi: "BTCUSDT"},
	})
	require.NoError(t, err)
	require.Len(t, metrics, len(market.Periods()))

	first := metrics[0]
	assert.Equal(t, "binance", first.Source)
	assert.Equal(t, "BTC", first.Market)
	assert.Equal(t, 130.0, first.Price)
	assert.Equal(t, uint64(1000), first.Volume)
	assert.Equal(t, open.Add(time.Minute), first.Datetime)

	for _, symbol := range symbols {
		assert.Equal(t, "BTCUSDT", symbol)
	}
}

func TestFetchMetricsSkipsMarketsWithoutSymbol(t *testing.T) {
	calls := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("[]"))
	})

	metrics, err := src.FetchMetrics(context.Background(), []market.Market{
		{Ticker: "NOSYMBOL"},
	})
	require.NoError(t, err)
	assert.Empty(t, metrics)
	assert.Zero(t, calls)
}

func TestFetchMetricsToleratesExchangeErrors(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	metrics, err := src.FetchMetrics(context.Background(), []market.Market{
		{Ticker: "BTC", Figi: "BTCUSDT"},
	})
	// Exchange failures degrade to an empty batch, not a run-level error.
	require.NoError(t, err)
	assert.Empty(t, metrics)
}
