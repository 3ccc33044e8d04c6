// Package rules holds the signal classification logic applied to freshly
// persisted metrics.
package rules

import (
	"context"
	"fmt"

	"github.com/desprit/bicklebow/internal/market"

	talib "github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// PriceHistory is the slice of the store the classifier reads: persisted
// prices for one market, oldest first.
type PriceHistory interface {
	RecentPrices(ctx context.Context, marketID int64, limit int) ([]float64, error)
}

// Classifier decides whether a metric is a signal.
type Classifier interface {
	Classify(ctx context.Context, m market.Market, metric *market.Metric) error
}

// SMAClassifier flags a metric when its price deviates from the simple moving
// average of the market's recent history by at least threshold (a ratio, e.g.
// 0.05 for five percent). Too little history means no signal, not an error:
// a freshly registered market has nothing to compare against yet.
type SMAClassifier struct {
	history   PriceHistory
	window    int
	threshold decimal.Decimal
}

func NewSMAClassifier(history PriceHistory, window int, threshold float64) *SMAClassifier {
	if window < 2 {
		window = 2
	}
	return &SMAClassifier{
		history:   history,
		window:    window,
		threshold: decimal.NewFromFloat(threshold),
	}
}

func (c *SMAClassifier) Classify(ctx context.Context, m market.Market, metric *market.Metric) error {
	prices, err := c.history.RecentPrices(ctx, metric.MarketID, c.window*2)
	if err != nil {
		return fmt.Errorf("classify %s: %w", m.Ticker, err)
	}
	if len(prices) < c.window {
		metric.IsSignal = false
		return nil
	}
	sma := talib.Sma(prices, c.window)
	last := sma[len(sma)-1]
	if last == 0 {
		metric.IsSignal = false
		return nil
	}
	price := decimal.NewFromFloat(metric.Price)
	mean := decimal.NewFromFloat(last)
	deviation := price.Sub(mean).Abs().Div(mean)
	metric.IsSignal = deviation.GreaterThanOrEqual(c.threshold)
	return nil
}

// StaticClassifier marks every metric with a fixed verdict. Useful for tests
// and for running the funnel before a real rule is configured.
type StaticClassifier struct {
	Signal bool
}

func (c StaticClassifier) Classify(_ context.Context, _ market.Market, metric *market.Metric) error {
	metric.IsSignal = c.Signal
	return nil
}
