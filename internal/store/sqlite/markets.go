package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type marketRepo struct {
	db *gorm.DB
}

func (r *marketRepo) InsertIfAbsent(ctx context.Context, m market.Market) error {
	row := model.NewMarketModel(m)
	row.ID = 0
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return fmt.Errorf("insert market %q: %w", m.Ticker, res.Error)
	}
	return nil
}

func (r *marketRepo) GetByTicker(ctx context.Context, ticker string) (market.Market, error) {
	var row model.MarketModel
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return market.Market{}, fmt.Errorf("ticker %q: %w", ticker, market.ErrMarketNotFound)
		}
		return market.Market{}, fmt.Errorf("get market %q: %w", ticker, err)
	}
	return row.Domain(), nil
}

func (r *marketRepo) List(ctx context.Context) ([]market.Market, error) {
	var rows []model.MarketModel
	if err := r.db.WithContext(ctx).Order("ticker asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	out := make([]market.Market, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Domain())
	}
	return out, nil
}
