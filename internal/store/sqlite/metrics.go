package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/store/model"

	"gorm.io/gorm"
)

type metricRepo struct {
	db *gorm.DB
}

func (r *metricRepo) Insert(ctx context.Context, m *market.Metric) error {
	if m.MarketID == 0 {
		return fmt.Errorf("insert metric: missing market reference")
	}
	row := model.NewMetricModel(*m)
	row.ID = 0
	row.CreatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert metric for market %d: %w", m.MarketID, err)
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return nil
}

func (r *metricRepo) Exists(ctx context.Context, marketID int64, source string, datetime time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MetricModel{}).
		Where("market_id = ? AND source = ? AND datetime = ?", marketID, source, datetime).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("metric exists check: %w", err)
	}
	return count > 0, nil
}

func (r *metricRepo) SetSignal(ctx context.Context, id int64, isSignal bool) error {
	err := r.db.WithContext(ctx).
		Model(&model.MetricModel{}).
		Where("id = ?", id).
		Update("is_signal", isSignal).Error
	if err != nil {
		return fmt.Errorf("set signal on metric %d: %w", id, err)
	}
	return nil
}

func (r *metricRepo) ListByMarket(ctx context.Context, marketID int64, limit int) ([]market.Metric, error) {
	var rows []model.MetricModel
	q := r.db.WithContext(ctx).
		Where("market_id = ?", marketID).
		Order("datetime desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list metrics for market %d: %w", marketID, err)
	}
	return toDomain(rows), nil
}

func (r *metricRepo) ListSignals(ctx context.Context, limit int) ([]market.Metric, error) {
	var rows []model.MetricModel
	q := r.db.WithContext(ctx).
		Where("is_signal = ?", true).
		Order("datetime desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return toDomain(rows), nil
}

func (r *metricRepo) RecentPrices(ctx context.Context, marketID int64, limit int) ([]float64, error) {
	var rows []model.MetricModel
	q := r.db.WithContext(ctx).
		Select("price", "datetime").
		Where("market_id = ?", marketID).
		Order("datetime desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("recent prices for market %d: %w", marketID, err)
	}
	// Reverse into chronological order for indicator input.
	prices := make([]float64, len(rows))
	for i, row := range rows {
		prices[len(rows)-1-i] = row.Price
	}
	return prices, nil
}

func toDomain(rows []model.MetricModel) []market.Metric {
	out := make([]market.Metric, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Domain())
	}
	return out
}
