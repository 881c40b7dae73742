package allocation

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

// minExperimentSlot is the smallest budget an experiment node receives when
// no minimum budget is configured.
var minExperimentSlot = decimal.NewFromInt(1)

// Experiments is the under-spend exploration set of one pass. Every node
// receives exactly Slot; Reserve = Slot × len(Nodes) is carved out of the
// spendable budget before tiers are funded.
type Experiments struct {
	Nodes   []RankedNode
	Slot    decimal.Decimal
	Reserve decimal.Decimal
}

// Contains reports whether the node with the given id was selected.
func (e Experiments) Contains(id string) bool {
	return slices.ContainsFunc(e.Nodes, func(rn RankedNode) bool {
		return rn.Node.AllocationID == id
	})
}

// ExperimentSlot returns the budget granted to each experiment node.
func ExperimentSlot(params domain.AllocationParameters) decimal.Decimal {
	return decimal.Max(params.MinBudget, minExperimentSlot).RoundBank(2)
}

// SelectExperiments reserves up to UnderSpendExperimentNodeCount nodes of
// tier UnderSpendExperimentTier for exploratory spend, preferring nodes with
// the fewest lifetime impressions. The selection never reserves more than
// the spendable budget.
func SelectExperiments(ranking Ranking, params domain.AllocationParameters, spendable decimal.Decimal) Experiments {
	slot := ExperimentSlot(params)
	exp := Experiments{Slot: slot, Reserve: decimal.Zero}
	if params.UnderSpendExperimentNodeCount <= 0 || !spendable.IsPositive() {
		return exp
	}

	candidates := ranking.Tier(params.UnderSpendExperimentTier)
	if len(candidates) == 0 {
		return exp
	}
	slices.SortStableFunc(candidates, func(a, b RankedNode) int {
		if c := cmp.Compare(a.Node.LifetimeImpressions, b.Node.LifetimeImpressions); c != 0 {
			return c
		}
		return cmp.Compare(a.Node.AllocationID, b.Node.AllocationID)
	})

	affordable := spendable.Div(slot).IntPart()
	n := min(int64(params.UnderSpendExperimentNodeCount), int64(len(candidates)), affordable)
	if n <= 0 {
		return exp
	}
	exp.Nodes = candidates[:n]
	exp.Reserve = slot.Mul(decimal.NewFromInt(n))
	return exp
}
