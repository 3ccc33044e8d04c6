// Command bicklebowctl runs one-shot maintenance actions against the catalog:
// schema init/teardown, market backfills, an ad-hoc pipeline pass and a YAML
// export of registered markets.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/desprit/bicklebow/internal/app"
	"github.com/desprit/bicklebow/internal/config"
	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/source/tinkoff"
	"github.com/desprit/bicklebow/internal/source/watchlist"
	"github.com/desprit/bicklebow/internal/store/sqlite"

	"gopkg.in/yaml.v3"
)

const usage = `usage: bicklebowctl <command>

commands:
  init-db         create the catalog schema
  drop-db         drop the catalog schema
  fill-db         register every broker instrument in the catalog
  fill-watchlist  register watchlist entries in the catalog
  fill-metrics    run a single fetch/persist pass
  export-markets  dump registered markets as YAML to stdout`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := os.Getenv("BICKLEBOW_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}
	logger.SetLevel(cfg.App.LogLevel)

	ctx := context.Background()
	if err := run(ctx, cfg, os.Args[1]); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, cfg *config.Config, command string) error {
	switch command {
	case "init-db":
		st, err := sqlite.NewSqliteStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Migrate(ctx)
	case "drop-db":
		st, err := sqlite.NewSqliteStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Drop(ctx)
	case "fill-db":
		return fillFromBroker(ctx, cfg)
	case "fill-watchlist":
		return fillFromWatchlist(ctx, cfg)
	case "fill-metrics":
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		report, err := a.Pipeline().Run(ctx)
		if err != nil {
			return err
		}
		logger.Infof("run %s: persisted %d metrics", report.RunID, report.Survived("persist"))
		return nil
	case "export-markets":
		return exportMarkets(ctx, cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// fillFromBroker registers the broker's full instrument list. Registration is
// idempotent, so re-running only adds instruments the catalog has not seen.
func fillFromBroker(ctx context.Context, cfg *config.Config) error {
	st, err := sqlite.NewSqliteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	client, err := tinkoff.NewClient(tinkoff.Config{
		Token:       cfg.Sources.Tinkoff.Token,
		RESTBaseURL: cfg.Sources.Tinkoff.BaseURL,
		HTTPTimeout: time.Duration(cfg.Sources.Tinkoff.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	stocks, err := client.Stocks(ctx)
	if err != nil {
		return err
	}
	for _, stock := range stocks {
		m := market.Market{
			Ticker: stock.Ticker,
			Label:  stock.Name,
			Figi:   stock.Figi,
		}
		if err := st.Markets().InsertIfAbsent(ctx, m); err != nil {
			return err
		}
	}
	logger.Infof("registered %d broker instruments", len(stocks))
	return nil
}

func fillFromWatchlist(ctx context.Context, cfg *config.Config) error {
	if cfg.Sources.Watchlist.Path == "" {
		return fmt.Errorf("sources.watchlist.path is not configured")
	}
	st, err := sqlite.NewSqliteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	registry, err := watchlist.NewRegistry(cfg.Sources.Watchlist.Path)
	if err != nil {
		return err
	}
	markets := registry.Markets()
	for _, m := range markets {
		if err := st.Markets().InsertIfAbsent(ctx, m); err != nil {
			return err
		}
	}
	logger.Infof("registered %d watchlist markets", len(markets))
	return nil
}

type marketExport struct {
	Ticker   string `yaml:"ticker"`
	Label    string `yaml:"label,omitempty"`
	Figi     string `yaml:"figi,omitempty"`
	Risk     int    `yaml:"risk"`
	Priority int    `yaml:"priority"`
	Category string `yaml:"category,omitempty"`
}

func exportMarkets(ctx context.Context, cfg *config.Config) error {
	st, err := sqlite.NewSqliteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	markets, err := st.Markets().List(ctx)
	if err != nil {
		return err
	}
	out := make([]marketExport, 0, len(markets))
	for _, m := range markets {
		out = append(out, marketExport{
			Ticker:   m.Ticker,
			Label:    m.Label,
			Figi:     m.Figi,
			Risk:     m.Risk,
			Priority: m.Priority,
			Category: string(m.Category),
		})
	}
	return yaml.NewEncoder(os.Stdout).Encode(map[string]any{"watchlist": out})
}
