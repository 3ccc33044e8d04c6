// Package pipeline orchestrates a full ingestion run: gather raw market
// references from every configured source, resolve them against the catalog,
// fetch and normalize observations for a bounded subset, and push each
// canonical metric through the ordered decision stages.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/market"
	"github.com/desprit/bicklebow/internal/source"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StageCount reports how many items survived a stage.
type StageCount struct {
	Stage    string
	Survived int
}

// Report summarizes one run. Counters shrink monotonically from Gathered
// down through the stage counts.
type Report struct {
	RunID      string
	Gathered   int
	Resolved   int
	Fetched    int
	Normalized int
	Stages     []StageCount
}

// Survived returns the survivor count for a named stage.
func (r Report) Survived(stage string) int {
	for _, sc := range r.Stages {
		if sc.Stage == stage {
			return sc.Survived
		}
	}
	return 0
}

type Pipeline struct {
	marketSources []source.MarketSource
	metricSource  source.MetricSource
	resolver      *market.Resolver
	normalizer    *market.Normalizer
	stages        []Stage
	marketLimit   int
}

// New wires a pipeline. marketLimit bounds how many resolved markets are
// passed to the metric source per run, to respect provider rate limits.
func New(marketSources []source.MarketSource, metricSource source.MetricSource,
	resolver *market.Resolver, normalizer *market.Normalizer,
	stages []Stage, marketLimit int) *Pipeline {
	if marketLimit <= 0 {
		marketLimit = 3
	}
	return &Pipeline{
		marketSources: marketSources,
		metricSource:  metricSource,
		resolver:      resolver,
		normalizer:    normalizer,
		stages:        stages,
		marketLimit:   marketLimit,
	}
}

// Run executes one pass. Per-item failures never abort the run; the only
// run-level errors are every market source failing at once or the catalog
// being unreachable. An empty successful run is a no-op, not an error.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	for _, st := range p.stages {
		report.Stages = append(report.Stages, StageCount{Stage: st.Name()})
	}

	refs, err := p.gather(ctx)
	if err != nil {
		return report, err
	}
	report.Gathered = len(refs)

	resolved := p.resolve(ctx, refs)
	report.Resolved = len(resolved)
	if len(resolved) == 0 {
		logger.Infof("run %s: no markets to work with", report.RunID)
		return report, nil
	}
	tickers := make([]string, 0, len(resolved))
	for _, m := range resolved {
		tickers = append(tickers, m.Ticker)
	}
	logger.Infof("run %s: markets to work with: %v", report.RunID, tickers)

	bounded := bound(resolved, p.marketLimit)
	observations, err := p.metricSource.FetchMetrics(ctx, bounded)
	if err != nil {
		// The source returns everything it could fetch before failing;
		// keep processing the partial batch.
		logger.Warnf("run %s: metric source %s: %v", report.RunID, p.metricSource.Name(), err)
	}
	report.Fetched = len(observations)

	items := p.normalize(ctx, bounded, observations)
	report.Normalized = len(items)

	p.decide(ctx, report.RunID, items, report.Stages)
	logger.Infof("run %s: gathered=%d resolved=%d fetched=%d normalized=%d stages=%v",
		report.RunID, report.Gathered, report.Resolved, report.Fetched, report.Normalized, report.Stages)
	return report, nil
}

// gather collects raw references from every market source concurrently.
// A failing source contributes nothing; only all sources failing together is
// fatal for the run.
func (p *Pipeline) gather(ctx context.Context) ([]market.SourceMarket, error) {
	if len(p.marketSources) == 0 {
		return nil, nil
	}
	results := make([][]market.SourceMarket, len(p.marketSources))
	var mu sync.Mutex
	failed := 0
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.marketSources {
		i, src := i, src
		g.Go(func() error {
			refs, err := src.ListMarkets(gctx)
			if err != nil {
				logger.Warnf("market source %s failed: %v", src.Name(), err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failed == len(p.marketSources) {
		return nil, errors.New("all market sources failed")
	}
	// Union by ticker, first occurrence wins.
	seen := make(map[string]bool)
	var union []market.SourceMarket
	for _, refs := range results {
		for _, ref := range refs {
			if ref.Ticker == "" || seen[ref.Ticker] {
				continue
			}
			seen[ref.Ticker] = true
			union = append(union, ref)
		}
	}
	return union, nil
}

func (p *Pipeline) resolve(ctx context.Context, refs []market.SourceMarket) []market.Market {
	out := make([]market.Market, 0, len(refs))
	for _, ref := range refs {
		m, err := p.resolver.ResolveSourceMarket(ctx, ref)
		if err != nil {
			if errors.Is(err, market.ErrMarketNotFound) {
				logger.Debugf("skipping unregistered market %q", ref.Ticker)
			} else {
				logger.Warnf("resolving %q failed: %v", ref.Ticker, err)
			}
			continue
		}
		out = append(out, m)
	}
	return out
}

// bound orders markets by priority (then ticker, for determinism) and keeps
// the top n.
func bound(markets []market.Market, n int) []market.Market {
	out := make([]market.Market, len(markets))
	copy(out, markets)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Ticker < out[j].Ticker
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (p *Pipeline) normalize(ctx context.Context, markets []market.Market, observations []market.SourceMetric) []Item {
	byTicker := make(map[string]market.Market, len(markets))
	for _, m := range markets {
		byTicker[m.Ticker] = m
	}
	items := make([]Item, 0, len(observations))
	for _, obs := range observations {
		metric, err := p.normalizer.Normalize(ctx, obs)
		if err != nil {
			if errors.Is(err, market.ErrMarketNotFound) {
				logger.Debugf("dropping observation for unregistered market %q", obs.Market)
			} else {
				logger.Warnf("normalizing observation for %q failed: %v", obs.Market, err)
			}
			continue
		}
		owner, ok := byTicker[obs.Market]
		if !ok {
			// Observation for a market outside the bounded batch; resolve it
			// so filters still see the right risk and priority.
			owner, err = p.resolver.Resolve(ctx, obs.Market)
			if err != nil {
				continue
			}
		}
		items = append(items, Item{Market: owner, Metric: metric})
	}
	return items
}

// decide runs every item through the ordered stages. Failure is per-item:
// a drop at any stage never affects sibling items.
func (p *Pipeline) decide(ctx context.Context, runID string, items []Item, counts []StageCount) {
	for _, item := range items {
		for i, stage := range p.stages {
			if err := stage.Handle(ctx, &item); err != nil {
				if errors.Is(err, ErrDrop) {
					logger.Debugf("run %s: stage %s dropped %s: %v", runID, stage.Name(), item.Market.Ticker, err)
				} else {
					logger.Warnf("run %s: stage %s failed for %s: %v", runID, stage.Name(), item.Market.Ticker, err)
				}
				break
			}
			counts[i].Survived++
		}
	}
}

// DefaultStages assembles the canonical funnel order.
func DefaultStages(persist *PersistStage, classify *ClassifyStage, filt *FilterStage, react *ReactStage) []Stage {
	return []Stage{persist, classify, filt, react}
}
