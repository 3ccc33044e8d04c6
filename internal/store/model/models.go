// Package model defines the gorm row types backing the catalog tables and
// their converters to and from the domain types.
package model

import (
	"time"

	"github.com/desprit/bicklebow/internal/market"
)

// MarketModel is the markets table row. Ticker carries the uniqueness
// constraint that makes registration idempotent.
type MarketModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Ticker    string    `gorm:"column:ticker;uniqueIndex"`
	Label     string    `gorm:"column:label"`
	Figi      string    `gorm:"column:figi"`
	Risk      int       `gorm:"column:risk"`
	Priority  int       `gorm:"column:priority"`
	Category  string    `gorm:"column:category"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (MarketModel) TableName() string { return "markets" }

// MetricModel is the metrics table row. No uniqueness constraint beyond the
// identifier: de-duplication is a pipeline policy, not a schema rule.
type MetricModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Source    string    `gorm:"column:source;index"`
	IsSignal  bool      `gorm:"column:is_signal"`
	Price     float64   `gorm:"column:price"`
	Volume    uint64    `gorm:"column:volume"`
	MarketID  int64     `gorm:"column:market_id;index"`
	Datetime  time.Time `gorm:"column:datetime"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (MetricModel) TableName() string { return "metrics" }

func NewMarketModel(m market.Market) MarketModel {
	return MarketModel{
		ID:        m.ID,
		Ticker:    m.Ticker,
		Label:     m.Label,
		Figi:      m.Figi,
		Risk:      m.Risk,
		Priority:  m.Priority,
		Category:  string(m.Category),
		CreatedAt: m.CreatedAt,
	}
}

func (m MarketModel) Domain() market.Market {
	category, err := market.ParseCategory(m.Category)
	if err != nil {
		category = ""
	}
	return market.Market{
		ID:        m.ID,
		Ticker:    m.Ticker,
		Label:     m.Label,
		Figi:      m.Figi,
		Risk:      m.Risk,
		Priority:  m.Priority,
		Category:  category,
		CreatedAt: m.CreatedAt,
	}
}

func NewMetricModel(m market.Metric) MetricModel {
	return MetricModel{
		ID:        m.ID,
		Source:    m.Source,
		IsSignal:  m.IsSignal,
		Price:     m.Price,
		Volume:    m.Volume,
		MarketID:  m.MarketID,
		Datetime:  m.Datetime,
		CreatedAt: m.CreatedAt,
	}
}

func (m MetricModel) Domain() market.Metric {
	return market.Metric{
		ID:        m.ID,
		Source:    m.Source,
		IsSignal:  m.IsSignal,
		Price:     m.Price,
		Volume:    m.Volume,
		MarketID:  m.MarketID,
		Datetime:  m.Datetime,
		CreatedAt: m.CreatedAt,
	}
}
