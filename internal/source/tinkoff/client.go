// Package tinkoff integrates the Tinkoff Invest REST API as a market and
// metric provider.
package tinkoff

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desprit/bicklebow/internal/source"

	"github.com/tidwall/gjson"
)

// Stock is a provider-native instrument description.
type Stock struct {
	Figi   string
	Ticker string
	Name   string
}

// Position is a provider-native portfolio holding.
type Position struct {
	Figi   string
	Ticker string
}

// Candle is a provider-native OHLCV sample.
type Candle struct {
	Open   float64
	Close  float64
	Volume uint64
	Time   time.Time
}

// Client is a thin REST client over the broker API. It only parses the
// payload fields the pipeline needs, via gjson.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	if final.Token == "" {
		return nil, fmt.Errorf("tinkoff token cannot be empty")
	}
	return &Client{
		cfg:        final,
		httpClient: &http.Client{Timeout: final.HTTPTimeout},
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	u := c.cfg.RESTBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("tinkoff request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("tinkoff read %s: %w", path, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return gjson.Result{}, fmt.Errorf("tinkoff %s status=%d: %w", path, resp.StatusCode, source.ErrUnauthorized)
	case resp.StatusCode/100 != 2:
		return gjson.Result{}, fmt.Errorf("tinkoff %s status=%d", path, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("tinkoff %s: invalid json payload", path)
	}
	return gjson.ParseBytes(body).Get("payload"), nil
}

// Stocks lists every instrument the broker trades. Used by the one-time
// catalog backfill, not by regular pipeline runs.
func (c *Client) Stocks(ctx context.Context) ([]Stock, error) {
	payload, err := c.get(ctx, "/market/stocks", nil)
	if err != nil {
		return nil, err
	}
	var out []Stock
	payload.Get("instruments").ForEach(func(_, item gjson.Result) bool {
		out = append(out, Stock{
			Figi:   item.Get("figi").String(),
			Ticker: item.Get("ticker").String(),
			Name:   item.Get("name").String(),
		})
		return true
	})
	return out, nil
}

// Portfolio lists current holdings.
func (c *Client) Portfolio(ctx context.Context) ([]Position, error) {
	payload, err := c.get(ctx, "/portfolio", nil)
	if err != nil {
		return nil, err
	}
	var out []Position
	payload.Get("positions").ForEach(func(_, item gjson.Result) bool {
		ticker := item.Get("ticker").String()
		if ticker == "" {
			return true
		}
		out = append(out, Position{
			Figi:   item.Get("figi").String(),
			Ticker: ticker,
		})
		return true
	})
	return out, nil
}

// Candles returns OHLCV samples for figi between from and to at the given
// broker resolution ("1min", "hour", "day", "week", "month").
func (c *Client) Candles(ctx context.Context, figi string, from, to time.Time, interval string) ([]Candle, error) {
	query := url.Values{}
	query.Set("figi", figi)
	query.Set("from", from.Format(time.RFC3339))
	query.Set("to", to.Format(time.RFC3339))
	query.Set("interval", interval)
	payload, err := c.get(ctx, "/market/candles", query)
	if err != nil {
		return nil, err
	}
	var out []Candle
	payload.Get("candles").ForEach(func(_, item gjson.Result) bool {
		t, err := time.Parse(time.RFC3339, item.Get("time").String())
		if err != nil {
			return true
		}
		out = append(out, Candle{
			Open:   item.Get("o").Float(),
			Close:  item.Get("c").Float(),
			Volume: item.Get("v").Uint(),
			Time:   t,
		})
		return true
	})
	return out, nil
}
