// Package allocation turns campaign-level inputs into per-node budgets,
// impression caps and bids. Everything in here is a pure function of its
// arguments: no clocks, no randomness, no I/O.
//
// A pass runs Rank, then SelectExperiments, then Distribute. Allocate wires
// the three together.
package allocation

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

// scoreEpsilon keeps the value score finite for nodes without a cost.
var scoreEpsilon = decimal.New(1, -4)

// RankedNode is a node with its position and tier in a ranking. Rank is
// zero-based, Tier is one-based with tier 1 holding the most valuable nodes.
type RankedNode struct {
	Node  domain.AllocationNode
	Score decimal.Decimal
	Rank  int
	Tier  int
}

// Ranking is the ordered output of Rank. Nodes beyond the active node cap
// are listed in Dropped; they are only excluded from this pass.
type Ranking struct {
	Nodes   []RankedNode
	Dropped []domain.AllocationNode
	// FundedTiers is the number of tiers the distributor allocates to.
	// Nodes with a higher tier form the unfunded overflow.
	FundedTiers int
}

// Funded returns the nodes in tiers 1..FundedTiers.
func (r Ranking) Funded() []RankedNode {
	out := make([]RankedNode, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		if n.Tier <= r.FundedTiers {
			out = append(out, n)
		}
	}
	return out
}

// Tier returns the nodes of tier t in rank order.
func (r Ranking) Tier(t int) []RankedNode {
	var out []RankedNode
	for _, n := range r.Nodes {
		if n.Tier == t {
			out = append(out, n)
		}
	}
	return out
}

// Empty reports whether no node was ranked.
func (r Ranking) Empty() bool {
	return len(r.Nodes) == 0
}

// Score computes valuation / max(cost per mille, epsilon). Nodes without a
// cost estimate are scored with the default estimate.
func Score(n domain.AllocationNode, params domain.AllocationParameters) decimal.Decimal {
	return n.Valuation.Div(decimal.Max(costPerMille(n, params), scoreEpsilon))
}

func costPerMille(n domain.AllocationNode, params domain.AllocationParameters) decimal.Decimal {
	if n.EstimatedCostPerMille.IsPositive() {
		return n.EstimatedCostPerMille
	}
	return params.DefaultEstimatedCostPerMille
}

// Rank orders nodes by value score, highest first, breaking ties by
// allocation id, and assigns tiers. At most params.NodeCap(mode) nodes are
// ranked. Tier 1 takes ceil(n/T) nodes capped at AllocationTopTier; the
// remaining nodes are spread evenly over tiers 2..T. With a single funded
// tier, nodes that do not fit the top tier land in the unfunded tier 2.
//
// An empty node list yields an empty ranking.
func Rank(nodes []domain.AllocationNode, params domain.AllocationParameters, mode domain.Mode) Ranking {
	tiers := max(params.NumberOfTiersToAllocateTo, 1)
	ranking := Ranking{FundedTiers: tiers}
	if len(nodes) == 0 {
		return ranking
	}

	scored := make([]RankedNode, len(nodes))
	for i, n := range nodes {
		scored[i] = RankedNode{Node: n, Score: Score(n, params)}
	}
	slices.SortStableFunc(scored, func(a, b RankedNode) int {
		if c := b.Score.Cmp(a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Node.AllocationID, b.Node.AllocationID)
	})

	if limit := params.NodeCap(mode); limit > 0 && len(scored) > limit {
		for _, rn := range scored[limit:] {
			ranking.Dropped = append(ranking.Dropped, rn.Node)
		}
		scored = scored[:limit]
	}

	n := len(scored)
	top := ceilDiv(n, tiers)
	if params.AllocationTopTier > 0 && top > params.AllocationTopTier {
		top = params.AllocationTopTier
	}
	rest := n - top
	per := 0
	if tiers > 1 && rest > 0 {
		per = ceilDiv(rest, tiers-1)
	}

	for i := range scored {
		scored[i].Rank = i
		switch {
		case i < top:
			scored[i].Tier = 1
		case per == 0:
			scored[i].Tier = tiers + 1
		default:
			scored[i].Tier = 2 + (i-top)/per
		}
	}
	ranking.Nodes = scored
	return ranking
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
