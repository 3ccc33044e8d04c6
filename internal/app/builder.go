// Package app wires configuration into a running process: store, sources,
// decision stages, pipeline and the optional admin API.
package app

import (
	"fmt"
	"time"

	"github.com/desprit/bicklebow/internal/config"
	"github.com/desprit/bicklebow/internal/filter"
	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/notifier"
	"github.com/desprit/bicklebow/internal/pipeline"
	"github.com/desprit/bicklebow/internal/rules"
	"github.com/desprit/bicklebow/internal/source"
	"github.com/desprit/bicklebow/internal/source/binance"
	"github.com/desprit/bicklebow/internal/source/tinkoff"
	"github.com/desprit/bicklebow/internal/source/watchlist"
	"github.com/desprit/bicklebow/internal/store"
	"github.com/desprit/bicklebow/internal/store/sqlite"
	adminhttp "github.com/desprit/bicklebow/internal/transport/http/admin"
)

// New builds the application from configuration. Everything is constructed
// explicitly here and torn down in Close; no component reaches for global
// state.
func New(cfg *config.Config) (*App, error) {
	st, err := sqlite.NewSqliteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	resolver := market.NewResolver(st.Markets())
	normalizer := market.NewNormalizer(resolver)

	marketSources, metricSource, err := buildSources(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	stages := pipeline.DefaultStages(
		pipeline.NewPersistStage(st.Metrics(), cfg.Pipeline.Dedup),
		pipeline.NewClassifyStage(buildClassifier(cfg, st), st.Metrics()),
		pipeline.NewFilterStage(buildFilterChain(cfg)),
		pipeline.NewReactStage(buildNotifier(cfg)),
	)
	pipe := pipeline.New(marketSources, metricSource, resolver, normalizer, stages, cfg.Pipeline.MarketLimit)

	var admin *adminhttp.Server
	if cfg.App.HTTPAddr != "" {
		admin = adminhttp.NewServer(cfg.App.HTTPAddr, st)
	}

	return &App{cfg: cfg, store: st, pipe: pipe, admin: admin}, nil
}

func buildSources(cfg *config.Config) ([]source.MarketSource, source.MetricSource, error) {
	var tinkoffClient *tinkoff.Client
	ensureTinkoff := func() (*tinkoff.Client, error) {
		if tinkoffClient != nil {
			return tinkoffClient, nil
		}
		client, err := tinkoff.NewClient(tinkoff.Config{
			Token:       cfg.Sources.Tinkoff.Token,
			RESTBaseURL: cfg.Sources.Tinkoff.BaseURL,
			HTTPTimeout: time.Duration(cfg.Sources.Tinkoff.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("tinkoff client: %w", err)
		}
		tinkoffClient = client
		return client, nil
	}

	var marketSources []source.MarketSource
	for _, name := range cfg.Sources.MarketSources {
		switch name {
		case "tinkoff":
			client, err := ensureTinkoff()
			if err != nil {
				return nil, nil, err
			}
			marketSources = append(marketSources, tinkoff.NewMarketsSource(client))
		case "watchlist":
			registry, err := watchlist.NewRegistry(cfg.Sources.Watchlist.Path)
			if err != nil {
				return nil, nil, fmt.Errorf("watchlist: %w", err)
			}
			marketSources = append(marketSources, watchlist.NewMarketsSource(registry))
		default:
			return nil, nil, fmt.Errorf("unknown market source %q", name)
		}
	}

	var metricSource source.MetricSource
	switch cfg.Sources.MetricSource {
	case "tinkoff":
		client, err := ensureTinkoff()
		if err != nil {
			return nil, nil, err
		}
		metricSource = tinkoff.NewMetricsSource(client)
	case "binance":
		metricSource = binance.NewMetricsSource(binance.Config{
			RESTBaseURL: cfg.Sources.Binance.BaseURL,
			HTTPTimeout: time.Duration(cfg.Sources.Binance.TimeoutSeconds) * time.Second,
		})
	default:
		return nil, nil, fmt.Errorf("unknown metric source %q", cfg.Sources.MetricSource)
	}
	return marketSources, metricSource, nil
}

func buildClassifier(cfg *config.Config, st store.Store) rules.Classifier {
	switch cfg.Pipeline.Classifier.Static {
	case "signal":
		return rules.StaticClassifier{Signal: true}
	case "noise":
		return rules.StaticClassifier{Signal: false}
	}
	return rules.NewSMAClassifier(st.Metrics(), cfg.Pipeline.Classifier.Window, cfg.Pipeline.Classifier.Threshold)
}

func buildFilterChain(cfg *config.Config) *filter.Chain {
	predicates := []filter.Predicate{
		filter.MaxRisk(cfg.Filter.MaxRisk),
		filter.MinPriority(cfg.Filter.MinPriority),
	}
	if cfg.Filter.RequireVolume {
		predicates = append(predicates, filter.NonZeroVolume())
	}
	return filter.NewChain(predicates...)
}

func buildNotifier(cfg *config.Config) notifier.TextNotifier {
	if cfg.Notify.Telegram.Enabled {
		return notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}
	return notifier.LogNotifier{}
}
