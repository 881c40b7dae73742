package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// allocationNamespace scopes the name-based UUIDs derived from measure sets.
var allocationNamespace = uuid.MustParse("6f0d9a52-3c1e-4d8e-9b57-0a4f2c7e1b63")

// NewAllocationID derives the stable identifier of a measure set. The same
// set of measures always yields the same id, across processes and restarts.
func NewAllocationID(set MeasureSet) string {
	return uuid.NewSHA1(allocationNamespace, []byte(set.String())).String()
}

// AllocationNode is a distinct combination of targeting measures competing
// for campaign budget. Its measure set is immutable once the id has been
// derived. ParentID optionally references the node this one was split from;
// it is only used to decide lineage penalty eligibility.
type AllocationNode struct {
	AllocationID          string
	MeasureSet            MeasureSet
	Valuation             decimal.Decimal
	EstimatedCostPerMille decimal.Decimal
	LifetimeImpressions   int64
	LifetimeSpend         decimal.Decimal
	ParentID              string
	LineageNeutral        bool
}

// NewAllocationNode builds a node for the given measures and derives its id.
func NewAllocationNode(valuation, cpm decimal.Decimal, measures ...int64) AllocationNode {
	set := NewMeasureSet(measures...)
	return AllocationNode{
		AllocationID:          NewAllocationID(set),
		MeasureSet:            set,
		Valuation:             valuation,
		EstimatedCostPerMille: cpm,
	}
}

// HasParent reports whether the node records a lineage parent.
func (n AllocationNode) HasParent() bool {
	return n.ParentID != ""
}

// LineageIndex resolves lineage links between nodes. Nodes live in a flat
// arena and parents are looked up by id, so a parent pruned from a later
// pass simply becomes unresolvable instead of dangling.
type LineageIndex struct {
	arena []AllocationNode
	slot  map[string]int
}

// NewLineageIndex indexes nodes by id and verifies that parent links form a
// forest. A cycle yields ErrLineageCycle; duplicate ids are rejected too.
func NewLineageIndex(nodes []AllocationNode) (*LineageIndex, error) {
	idx := &LineageIndex{
		arena: make([]AllocationNode, len(nodes)),
		slot:  make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := idx.slot[n.AllocationID]; dup {
			return nil, fmt.Errorf("duplicate allocation node %s", n.AllocationID)
		}
		idx.arena[i] = n
		idx.slot[n.AllocationID] = i
	}

	// 0 = unvisited, 1 = on current path, 2 = done
	state := make([]uint8, len(idx.arena))
	for i := range idx.arena {
		var path []int
		cur := i
		for cur >= 0 && state[cur] == 0 {
			state[cur] = 1
			path = append(path, cur)
			cur = idx.parentSlot(cur)
		}
		if cur >= 0 && state[cur] == 1 {
			return nil, fmt.Errorf("%w: node %s", ErrLineageCycle, idx.arena[cur].AllocationID)
		}
		for _, p := range path {
			state[p] = 2
		}
	}
	return idx, nil
}

func (x *LineageIndex) parentSlot(i int) int {
	pid := x.arena[i].ParentID
	if pid == "" {
		return -1
	}
	if p, ok := x.slot[pid]; ok {
		return p
	}
	return -1
}

// Node returns the indexed node with the given id.
func (x *LineageIndex) Node(id string) (AllocationNode, bool) {
	i, ok := x.slot[id]
	if !ok {
		return AllocationNode{}, false
	}
	return x.arena[i], true
}

// Parent resolves the parent of id. It returns false when the node has no
// parent or the parent is not part of the index.
func (x *LineageIndex) Parent(id string) (AllocationNode, bool) {
	i, ok := x.slot[id]
	if !ok {
		return AllocationNode{}, false
	}
	p := x.parentSlot(i)
	if p < 0 {
		return AllocationNode{}, false
	}
	return x.arena[p], true
}

// Derived reports whether the node was split from another node. A recorded
// parent counts even when that parent is no longer indexed.
func (x *LineageIndex) Derived(id string) bool {
	n, ok := x.Node(id)
	return ok && n.HasParent()
}

// Depth returns the number of resolvable ancestors of id.
func (x *LineageIndex) Depth(id string) int {
	i, ok := x.slot[id]
	if !ok {
		return 0
	}
	depth := 0
	for p := x.parentSlot(i); p >= 0; p = x.parentSlot(p) {
		depth++
	}
	return depth
}

// Nodes returns the indexed nodes in insertion order.
func (x *LineageIndex) Nodes() []AllocationNode {
	return x.arena
}
