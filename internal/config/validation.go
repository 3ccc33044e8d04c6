package config

import "fmt"

var knownMarketSources = map[string]bool{
	"tinkoff":   true,
	"watchlist": true,
}

var knownMetricSources = map[string]bool{
	"tinkoff": true,
	"binance": true,
}

func validate(cfg *Config) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty")
	}
	if cfg.Pipeline.MarketLimit <= 0 {
		return fmt.Errorf("pipeline.market_limit must be positive")
	}
	if cfg.Pipeline.Classifier.Threshold < 0 {
		return fmt.Errorf("pipeline.classifier.threshold cannot be negative")
	}
	if len(cfg.Sources.MarketSources) == 0 {
		return fmt.Errorf("sources.market_sources cannot be empty")
	}
	for _, name := range cfg.Sources.MarketSources {
		if !knownMarketSources[name] {
			return fmt.Errorf("unknown market source %q", name)
		}
	}
	if !knownMetricSources[cfg.Sources.MetricSource] {
		return fmt.Errorf("unknown metric source %q", cfg.Sources.MetricSource)
	}
	for _, name := range cfg.Sources.MarketSources {
		if name == "tinkoff" && cfg.Sources.Tinkoff.Token == "" {
			return fmt.Errorf("sources.tinkoff.token is required for the tinkoff source")
		}
		if name == "watchlist" && cfg.Sources.Watchlist.Path == "" {
			return fmt.Errorf("sources.watchlist.path is required for the watchlist source")
		}
	}
	if cfg.Sources.MetricSource == "tinkoff" && cfg.Sources.Tinkoff.Token == "" {
		return fmt.Errorf("sources.tinkoff.token is required for the tinkoff source")
	}
	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.BotToken == "" || cfg.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
		}
	}
	return nil
}
