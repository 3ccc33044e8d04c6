// Package filter implements the admission predicates applied to classified
// signals before any reaction fires.
package filter

import (
	"github.com/desprit/bicklebow/internal/market"
)

// Predicate admits or vetoes a signal. Name is used in per-item drop logs.
type Predicate struct {
	Name  string
	Admit func(m market.Market, metric market.Metric) bool
}

// MaxRisk vetoes markets whose risk score exceeds max.
func MaxRisk(max int) Predicate {
	return Predicate{
		Name: "max_risk",
		Admit: func(m market.Market, _ market.Metric) bool {
			return m.Risk <= max
		},
	}
}

// MinPriority vetoes markets below the given priority.
func MinPriority(min int) Predicate {
	return Predicate{
		Name: "min_priority",
		Admit: func(m market.Market, _ market.Metric) bool {
			return m.Priority >= min
		},
	}
}

// NonZeroVolume vetoes observations with no traded volume.
func NonZeroVolume() Predicate {
	return Predicate{
		Name: "non_zero_volume",
		Admit: func(_ market.Market, metric market.Metric) bool {
			return metric.Volume > 0
		},
	}
}

// Chain evaluates predicates in order; the first veto wins.
type Chain struct {
	predicates []Predicate
}

func NewChain(predicates ...Predicate) *Chain {
	return &Chain{predicates: predicates}
}

// Evaluate returns true when every predicate admits the metric, otherwise
// false and the name of the vetoing predicate.
func (c *Chain) Evaluate(m market.Market, metric market.Metric) (bool, string) {
	for _, p := range c.predicates {
		if p.Admit == nil {
			continue
		}
		if !p.Admit(m, metric) {
			return false, p.Name
		}
	}
	return true, ""
}
