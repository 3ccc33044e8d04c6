package market_test

import (
	"context"
	"testing"
	"time"

	"github.com/desprit/bicklebow/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCopiesObservationVerbatim(t *testing.T) {
	st := newCatalog(t)
	registered := registerGazprom(t, st)
	normalizer := market.NewNormalizer(market.NewResolver(st.Markets()))

	observed := time.Date(2022, 2, 1, 4, 0, 0, 0, time.UTC)
	metric, err := normalizer.Normalize(context.Background(), market.SourceMetric{
		Source:   "tinkoff",
		Market:   "GAZP",
		Period:   market.PeriodCurrent,
		Price:    130000.0,
		Volume:   1000,
		Datetime: observed,
	})
	require.NoError(t, err)

	assert.Equal(t, registered.ID, metric.MarketID)
	assert.Equal(t, "tinkoff", metric.Source)
	assert.Equal(t, 130000.0, metric.Price)
	assert.Equal(t, uint64(1000), metric.Volume)
	assert.True(t, metric.Datetime.Equal(observed))
	assert.False(t, metric.IsSignal)
	assert.Zero(t, metric.ID)
	assert.True(t, metric.CreatedAt.IsZero())
}

func TestNormalizeUnresolvableObservation(t *testing.T) {
	st := newCatalog(t)
	registerGazprom(t, st)
	normalizer := market.NewNormalizer(market.NewResolver(st.Markets()))

	_, err := normalizer.Normalize(context.Background(), market.SourceMetric{
		Source: "tinkoff",
		Market: "UNKNOWN",
	})
	assert.ErrorIs(t, err, market.ErrMarketNotFound)
}

// A bad observation in the middle of a batch only costs that one item.
func TestNormalizePerItemIsolation(t *testing.T) {
	st := newCatalog(t)
	registerGazprom(t, st)
	normalizer := market.NewNormalizer(market.NewResolver(st.Markets()))
	ctx := context.Background()

	observations := []market.SourceMetric{
		{Source: "tinkoff", Market: "GAZP", Price: 100, Volume: 1},
		{Source: "tinkoff", Market: "UNKNOWN", Price: 200, Volume: 2},
		{Source: "tinkoff", Market: "GAZP", Price: 300, Volume: 3},
	}
	var metrics []market.Metric
	for _, obs := range observations {
		metric, err := normalizer.Normalize(ctx, obs)
		if err != nil {
			continue
		}
		metrics = append(metrics, metric)
	}

	require.Len(t, metrics, 2)
	assert.Equal(t, 100.0, metrics[0].Price)
	assert.Equal(t, 300.0, metrics[1].Price)
}
