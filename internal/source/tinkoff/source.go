package tinkoff

import (
	"context"
	"errors"
	"time"

	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/source"
)

const sourceName = "tinkoff"

// lookback pairs a sampling period with how far back the fetch window opens.
// Window sizes are generous enough to always contain at least one closed
// candle of that resolution.
type lookback struct {
	period market.Period
	window time.Duration
}

func lookbacks() []lookback {
	return []lookback{
		{market.PeriodCurrent, 2 * time.Minute},
		{market.PeriodHour, 2 * time.Hour},
		{market.PeriodDay, 48 * time.Hour},
		{market.PeriodWeek, 14 * 24 * time.Hour},
		{market.PeriodMonth, 60 * 24 * time.Hour},
	}
}

func resolution(p market.Period) string {
	switch p {
	case market.PeriodHour:
		return "hour"
	case market.PeriodDay:
		return "day"
	case market.PeriodWeek:
		return "week"
	case market.PeriodMonth:
		return "month"
	default:
		return "1min"
	}
}

// MarketsSource lists the broker portfolio holdings as raw market references.
type MarketsSource struct {
	client *Client
}

func NewMarketsSource(client *Client) *MarketsSource {
	return &MarketsSource{client: client}
}

func (s *MarketsSource) Name() string { return sourceName }

func (s *MarketsSource) ListMarkets(ctx context.Context) ([]market.SourceMarket, error) {
	positions, err := s.client.Portfolio(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]market.SourceMarket, 0, len(positions))
	for _, p := range positions {
		out = append(out, market.SourceMarket{Ticker: p.Ticker, Figi: p.Figi})
	}
	return out, nil
}

// MetricsSource fetches the most recent candle per (market, period) pair.
type MetricsSource struct {
	client *Client
	now    func() time.Time
}

func NewMetricsSource(client *Client) *MetricsSource {
	return &MetricsSource{client: client, now: time.Now}
}

func (s *MetricsSource) Name() string { return sourceName }

func (s *MetricsSource) FetchMetrics(ctx context.Context, markets []market.Market) ([]market.SourceMetric, error) {
	now := s.now().UTC()
	var out []market.SourceMetric
	for _, m := range markets {
		if m.Figi == "" {
			// No provider reference, nothing to query.
			continue
		}
		logger.Debugf("tinkoff: requesting metrics for %s", m.Ticker)
		for _, lb := range lookbacks() {
			candles, err := s.client.Candles(ctx, m.Figi, now.Add(-lb.window), now, resolution(lb.period))
			if err != nil {
				if errors.Is(err, source.ErrUnauthorized) {
					return out, err
				}
				logger.Warnf("tinkoff: candles for %s period=%s failed: %v", m.Ticker, lb.period, err)
				continue
			}
			if len(candles) == 0 {
				continue
			}
			last := candles[len(candles)-1]
			out = append(out, market.SourceMetric{
				Source:   sourceName,
				Market:   m.Ticker,
				Period:   lb.period,
				Price:    (last.Open + last.Close) / 2,
				Volume:   last.Volume,
				Datetime: last.Time,
			})
		}
	}
	return out, nil
}
