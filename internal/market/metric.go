package market

import "time"

// Period is the sampling granularity of a provider observation. Current means
// "the most recent sampling interval" (roughly the last couple of minutes).
type Period string

const (
	PeriodHour    Period = "hour"
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodCurrent Period = "current"
)

// Periods lists every granularity a metric source samples, in fetch order.
func Periods() []Period {
	return []Period{PeriodCurrent, PeriodHour, PeriodDay, PeriodWeek, PeriodMonth}
}

// SourceMetric is a provider's raw price/volume sample. Market is the
// provider's symbol string, not a catalog identifier; the normalizer turns it
// into a Metric or drops it.
type SourceMetric struct {
	Source   string
	Market   string
	Period   Period
	Price    float64
	Volume   uint64
	Datetime time.Time
}

// Metric is the canonical, persisted observation. MarketID always references
// an existing Market: a metric whose ticker cannot be resolved is discarded
// before persistence, never stored with a dangling reference. IsSignal starts
// false and is only flipped by the classification stage.
type Metric struct {
	ID        int64
	Source    string
	IsSignal  bool
	Price     float64
	Volume    uint64
	MarketID  int64
	Datetime  time.Time
	CreatedAt time.Time
}
