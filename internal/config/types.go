package config

// Config is the full process configuration. It is built once in main and
// passed explicitly into constructors; there is no settings singleton.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Store    StoreConfig    `mapstructure:"store"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type AppConfig struct {
	Env                string `mapstructure:"env"`
	LogLevel           string `mapstructure:"log_level"`
	LogPath            string `mapstructure:"log_path"`
	HTTPAddr           string `mapstructure:"http_addr"`
	RunIntervalSeconds int    `mapstructure:"run_interval_seconds"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// PipelineConfig tunes the run: how many resolved markets are fetched per
// pass, whether repeated observations are de-duplicated, and the signal rule
// parameters.
type PipelineConfig struct {
	MarketLimit int              `mapstructure:"market_limit"`
	Dedup       bool             `mapstructure:"dedup"`
	Classifier  ClassifierConfig `mapstructure:"classifier"`
}

type ClassifierConfig struct {
	// Static short-circuits the SMA rule: "signal", "noise" or "" (use SMA).
	Static    string  `mapstructure:"static"`
	Window    int     `mapstructure:"window"`
	Threshold float64 `mapstructure:"threshold"`
}

type FilterConfig struct {
	MaxRisk       int  `mapstructure:"max_risk"`
	MinPriority   int  `mapstructure:"min_priority"`
	RequireVolume bool `mapstructure:"require_volume"`
}

type SourcesConfig struct {
	MarketSources []string        `mapstructure:"market_sources"`
	MetricSource  string          `mapstructure:"metric_source"`
	Tinkoff       TinkoffConfig   `mapstructure:"tinkoff"`
	Binance       BinanceConfig   `mapstructure:"binance"`
	Watchlist     WatchlistConfig `mapstructure:"watchlist"`
}

type TinkoffConfig struct {
	Token          string `mapstructure:"token"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type BinanceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type WatchlistConfig struct {
	Path string `mapstructure:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}
