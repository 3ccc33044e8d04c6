package rules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	prices []float64
	err    error
}

func (f fakeHistory) RecentPrices(_ context.Context, _ int64, limit int) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.prices) > limit {
		return f.prices[len(f.prices)-limit:], nil
	}
	return f.prices, nil
}

func classify(t *testing.T, c rules.Classifier, price float64) market.Metric {
	t.Helper()
	metric := market.Metric{MarketID: 1, Price: price}
	require.NoError(t, c.Classify(context.Background(), market.Market{Ticker: "GAZP"}, &metric))
	return metric
}

func TestSMAClassifier(t *testing.T) {
	flat := fakeHistory{prices: []float64{100, 100, 100, 100, 100}}

	t.Run("deviation above threshold is a signal", func(t *testing.T) {
		c := rules.NewSMAClassifier(flat, 5, 0.05)
		assert.True(t, classify(t, c, 110).IsSignal)
	})

	t.Run("deviation below threshold is noise", func(t *testing.T) {
		c := rules.NewSMAClassifier(flat, 5, 0.05)
		assert.False(t, classify(t, c, 101).IsSignal)
	})

	t.Run("deviation exactly at threshold is a signal", func(t *testing.T) {
		c := rules.NewSMAClassifier(flat, 5, 0.05)
		assert.True(t, classify(t, c, 105).IsSignal)
	})

	t.Run("downward deviation counts too", func(t *testing.T) {
		c := rules.NewSMAClassifier(flat, 5, 0.05)
		assert.True(t, classify(t, c, 90).IsSignal)
	})

	t.Run("insufficient history is noise not error", func(t *testing.T) {
		c := rules.NewSMAClassifier(fakeHistory{prices: []float64{100, 100}}, 5, 0.05)
		assert.False(t, classify(t, c, 500).IsSignal)
	})

	t.Run("history failure is an error", func(t *testing.T) {
		c := rules.NewSMAClassifier(fakeHistory{err: errors.New("locked")}, 5, 0.05)
		metric := market.Metric{MarketID: 1, Price: 100}
		err := c.Classify(context.Background(), market.Market{Ticker: "GAZP"}, &metric)
		assert.Error(t, err)
	})
}

func TestStaticClassifier(t *testing.T) {
	assert.True(t, classify(t, rules.StaticClassifier{Signal: true}, 100).IsSignal)
	assert.False(t, classify(t, rules.StaticClassifier{Signal: false}, 100).IsSignal)
}
