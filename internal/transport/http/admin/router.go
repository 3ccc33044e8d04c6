// Package adminhttp exposes a read-only HTTP view of the catalog: registered
// markets, their metrics and flagged signals. It never mutates state; all
// writes stay inside the pipeline.
package adminhttp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/store"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 100

// Router mounts the catalog query endpoints.
type Router struct {
	store store.Store
}

func NewRouter(s store.Store) *Router {
	return &Router{store: s}
}

// Register mounts the API routes onto the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/markets", r.handleMarkets)
	group.GET("/markets/:ticker/metrics", r.handleMarketMetrics)
	group.GET("/signals", r.handleSignals)
}

type marketView struct {
	ID       int64  `json:"id"`
	Ticker   string `json:"ticker"`
	Label    string `json:"label"`
	Figi     string `json:"figi,omitempty"`
	Risk     int    `json:"risk"`
	Priority int    `json:"priority"`
	Category string `json:"category,omitempty"`
}

type metricView struct {
	ID       int64   `json:"id"`
	Source   string  `json:"source"`
	IsSignal bool    `json:"is_signal"`
	Price    float64 `json:"price"`
	Volume   uint64  `json:"volume"`
	MarketID int64   `json:"market_id"`
	Datetime string  `json:"datetime"`
}

func (r *Router) handleMarkets(c *gin.Context) {
	markets, err := r.store.Markets().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]marketView, 0, len(markets))
	for _, m := range markets {
		out = append(out, newMarketView(m))
	}
	c.JSON(http.StatusOK, gin.H{"markets": out})
}

func (r *Router) handleMarketMetrics(c *gin.Context) {
	ticker := c.Param("ticker")
	m, err := r.store.Markets().GetByTicker(c.Request.Context(), ticker)
	if err != nil {
		if errors.Is(err, market.ErrMarketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown ticker"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics, err := r.store.Metrics().ListByMarket(c.Request.Context(), m.ID, limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"market":  newMarketView(m),
		"metrics": newMetricViews(metrics),
	})
}

func (r *Router) handleSignals(c *gin.Context) {
	signals, err := r.store.Metrics().ListSignals(c.Request.Context(), limitParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": newMetricViews(signals)})
}

func limitParam(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return n
}

func newMarketView(m market.Market) marketView {
	return marketView{
		ID:       m.ID,
		Ticker:   m.Ticker,
		Label:    m.Label,
		Figi:     m.Figi,
		Risk:     m.Risk,
		Priority: m.Priority,
		Category: string(m.Category),
	}
}

func newMetricViews(metrics []market.Metric) []metricView {
	out := make([]metricView, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, metricView{
			ID:       m.ID,
			Source:   m.Source,
			IsSignal: m.IsSignal,
			Price:    m.Price,
			Volume:   m.Volume,
			MarketID: m.MarketID,
			Datetime: m.Datetime.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
