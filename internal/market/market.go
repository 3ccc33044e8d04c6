// Package market holds the canonical data model of the catalog: markets
// (tradable instruments owned locally) and metrics (persisted price/volume
// observations), together with the resolution logic that maps raw provider
// identifiers onto catalog records.
package market

import (
	"fmt"
	"time"
)

// Category is the closed set of market groupings used by filters and reports.
type Category string

const (
	CategoryEtfs            Category = "Etfs"
	CategoryHealthcare      Category = "Healthcare"
	CategoryBasicMaterials  Category = "BasicMaterials"
	CategoryIndustrialGoods Category = "IndustrialGoods"
	CategoryIt              Category = "It"
	CategoryConsumerGoods   Category = "ConsumerGoods"
	CategoryCopyTrade       Category = "CopyTrade"
	CategoryTransport       Category = "Transport"
	CategoryFinancial       Category = "Financial"
)

// ParseCategory converts a stored string back into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryEtfs, CategoryHealthcare, CategoryBasicMaterials,
		CategoryIndustrialGoods, CategoryIt, CategoryConsumerGoods,
		CategoryCopyTrade, CategoryTransport, CategoryFinancial:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown market category %q", s)
}

// SourceMarket is a provider's raw identification of a market. It is never
// persisted; it only exists to be resolved into a Market.
type SourceMarket struct {
	Ticker string
	Figi   string
}

// Market is the canonical, locally-owned record of a tradable instrument.
// Ticker is unique within the catalog and is the only join key for identity;
// Figi, when present, is advisory provider metadata. Records are append-only:
// created once, never mutated, never deleted during normal operation.
type Market struct {
	ID        int64
	Ticker    string
	Label     string
	Figi      string
	Risk      int
	Priority  int
	Category  Category
	CreatedAt time.Time
}
