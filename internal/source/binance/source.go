// Package binance implements a metric source on top of the go-binance SDK,
// for catalogs that track exchange pairs instead of broker instruments.
package binance

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/market"

	gobinance "github.com/adshao/go-binance/v2"
)

const sourceName = "binance"

// MetricsSource fetches the most recent closed kline per (market, period).
// The exchange pair symbol (e.g. BTCUSDT) travels in the market's external
// reference field; markets without one are skipped.
type MetricsSource struct {
	client *gobinance.Client
	now    func() time.Time
}

func NewMetricsSource(cfg Config) *MetricsSource {
	final := cfg.withDefaults()
	client := gobinance.NewClient("", "")
	if final.RESTBaseURL != "" {
		client.BaseURL = final.RESTBaseURL
	}
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &MetricsSource{client: client, now: time.Now}
}

type window struct {
	period   market.Period
	interval string
	span     time.Duration
}

func windows() []window {
	return []window{
		{market.PeriodCurrent, "1m", 2 * time.Minute},
		{market.PeriodHour, "1h", 2 * time.Hour},
		{market.PeriodDay, "1d", 48 * time.Hour},
		{market.PeriodWeek, "1w", 14 * 24 * time.Hour},
		{market.PeriodMonth, "1M", 60 * 24 * time.Hour},
	}
}

func (s *MetricsSource) Name() string { return sourceName }

func (s *MetricsSource) FetchMetrics(ctx context.Context, markets []market.Market) ([]market.SourceMetric, error) {
	now := s.now().UTC()
	var out []market.SourceMetric
	for _, m := range markets {
		if m.Figi == "" {
			continue
		}
		for _, w := range windows() {
			klines, err := s.client.NewKlinesService().
				Symbol(m.Figi).
				Interval(w.interval).
				StartTime(now.Add(-w.span).UnixMilli()).
				EndTime(now.UnixMilli()).
				Limit(500).
				Do(ctx)
			if err != nil {
				logger.Warnf("binance: klines for %s period=%s failed: %v", m.Ticker, w.period, err)
				continue
			}
			if len(klines) == 0 || klines[len(klines)-1] == nil {
				continue
			}
			last := klines[len(klines)-1]
			out = append(out, market.SourceMetric{
				Source:   sourceName,
				Market:   m.Ticker,
				Period:   w.period,
				Price:    (parseFloat(last.Open) + parseFloat(last.Close)) / 2,
				Volume:   uint64(parseFloat(last.Volume)),
				Datetime: time.UnixMilli(last.CloseTime).UTC(),
			})
		}
	}
	return out, nil
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
