package pipeline

import (
	"context"
	"errors"

	"github.com/desprit/bicklebow/internal/market"
)

// Item is what travels through the decision funnel: a normalized metric plus
// the canonical market it belongs to, so stages never have to resolve again.
type Item struct {
	Market market.Market
	Metric market.Metric
}

// ErrDrop is returned by a stage to remove the item from further processing
// without treating it as a failure (non-signal verdicts, filter vetoes,
// de-duplicated inserts). Any other stage error also drops the item but is
// logged as a warning. Either way the drop is strictly per-item: sibling
// items in the same run are unaffected.
var ErrDrop = errors.New("metric dropped")

// Stage is one step of the decision funnel.
type Stage interface {
	Name() string
	Handle(ctx context.Context, item *Item) error
}
