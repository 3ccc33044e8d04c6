package pipeline

import (
	"context"
	"fmt"

	"github.com/desprit/bicklebow/internal/filter"
	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/notifier"
	"github.com/desprit/bicklebow/internal/rules"
	"github.com/desprit/bicklebow/internal/store"
)

// PersistStage stores the metric. With dedup enabled, an observation that is
// already stored for the same (market, source, datetime) is dropped instead
// of inserted again.
type PersistStage struct {
	metrics store.MetricRepository
	dedup   bool
}

func NewPersistStage(metrics store.MetricRepository, dedup bool) *PersistStage {
	return &PersistStage{metrics: metrics, dedup: dedup}
}

func (s *PersistStage) Name() string { return "persist" }

func (s *PersistStage) Handle(ctx context.Context, item *Item) error {
	if s.dedup {
		exists, err := s.metrics.Exists(ctx, item.Metric.MarketID, item.Metric.Source, item.Metric.Datetime)
		if err != nil {
			return fmt.Errorf("persist: %w", err)
		}
		if exists {
			return fmt.Errorf("duplicate observation for %s at %s: %w",
				item.Market.Ticker, item.Metric.Datetime, ErrDrop)
		}
	}
	if err := s.metrics.Insert(ctx, &item.Metric); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// ClassifyStage applies the signal rule and drops non-signals. A positive
// verdict is written back to the stored row so the catalog reflects it.
type ClassifyStage struct {
	classifier rules.Classifier
	metrics    store.MetricRepository
}

func NewClassifyStage(classifier rules.Classifier, metrics store.MetricRepository) *ClassifyStage {
	return &ClassifyStage{classifier: classifier, metrics: metrics}
}

func (s *ClassifyStage) Name() string { return "classify" }

func (s *ClassifyStage) Handle(ctx context.Context, item *Item) error {
	if err := s.classifier.Classify(ctx, item.Market, &item.Metric); err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if !item.Metric.IsSignal {
		return fmt.Errorf("%s is not a signal: %w", item.Market.Ticker, ErrDrop)
	}
	if item.Metric.ID != 0 {
		if err := s.metrics.SetSignal(ctx, item.Metric.ID, true); err != nil {
			return fmt.Errorf("classify: %w", err)
		}
	}
	return nil
}

// FilterStage runs the admission predicate chain.
type FilterStage struct {
	chain *filter.Chain
}

func NewFilterStage(chain *filter.Chain) *FilterStage {
	return &FilterStage{chain: chain}
}

func (s *FilterStage) Name() string { return "filter" }

func (s *FilterStage) Handle(_ context.Context, item *Item) error {
	admitted, veto := s.chain.Evaluate(item.Market, item.Metric)
	if !admitted {
		return fmt.Errorf("%s vetoed by %s: %w", item.Market.Ticker, veto, ErrDrop)
	}
	return nil
}

// ReactStage emits the alert for a surviving signal. Its outcome is not
// gated: a delivery failure is logged and the item still counts as reacted.
type ReactStage struct {
	notifier notifier.TextNotifier
}

func NewReactStage(n notifier.TextNotifier) *ReactStage {
	return &ReactStage{notifier: n}
}

func (s *ReactStage) Name() string { return "react" }

func (s *ReactStage) Handle(_ context.Context, item *Item) error {
	text := fmt.Sprintf("signal %s (%s): price=%.2f volume=%d at %s",
		item.Market.Ticker, item.Metric.Source, item.Metric.Price,
		item.Metric.Volume, item.Metric.Datetime.Format("2006-01-02 15:04:05"))
	if err := s.notifier.SendText(text); err != nil {
		logger.Warnf("react: notification for %s failed: %v", item.Market.Ticker, err)
	}
	return nil
}
