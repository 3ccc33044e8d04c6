package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "testing")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.run_interval_seconds", 300)

	v.SetDefault("store.path", "/tmp/bicklebow.db")

	v.SetDefault("pipeline.market_limit", 3)
	v.SetDefault("pipeline.dedup", true)
	v.SetDefault("pipeline.classifier.window", 5)
	v.SetDefault("pipeline.classifier.threshold", 0.05)

	v.SetDefault("filter.max_risk", 5)
	v.SetDefault("filter.min_priority", 0)
	v.SetDefault("filter.require_volume", true)

	v.SetDefault("sources.market_sources", []string{"tinkoff"})
	v.SetDefault("sources.metric_source", "tinkoff")
	v.SetDefault("sources.tinkoff.timeout_seconds", 15)
	v.SetDefault("sources.binance.timeout_seconds", 15)
}
