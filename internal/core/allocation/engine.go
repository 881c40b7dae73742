package allocation

import (
	"fmt"

	"mesa-alloc/internal/core/domain"
)

// Result is the outcome of one allocation pass.
type Result struct {
	Output  domain.BudgetAllocationOutput
	Report  Report
	Ranking Ranking
	// Unavailable lists nodes excluded because one of their measures has a
	// known volume of zero.
	Unavailable []string
}

// Allocate runs a full pass: parameter validation, node assembly, ranking,
// experiment selection and distribution. It never reads the clock, so the
// same arguments always produce the same output.
//
// An empty or fully excluded node set is not an error; it yields an output
// without results.
func Allocate(in domain.BudgetAllocationInputs, params domain.AllocationParameters, mode domain.Mode) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	nodes := make([]domain.AllocationNode, 0, len(in.Nodes))
	for _, ni := range in.Nodes {
		nodes = append(nodes, ni.Node())
	}
	lineage, err := domain.NewLineageIndex(nodes)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidParameters, err)
	}

	eligible, unavailable := filterUnavailable(nodes, in.HistoricalMeasureVolumes)

	ranking := Rank(eligible, params, mode)
	exp := SelectExperiments(ranking, params, SpendableBudget(in, params))
	out, report, err := Distribute(ranking, exp, in, params, lineage)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out, Report: report, Ranking: ranking, Unavailable: unavailable}, nil
}

// filterUnavailable removes nodes targeting a measure with a known volume
// of zero. Unknown volumes never exclude a node.
func filterUnavailable(nodes []domain.AllocationNode, volumes []domain.HistoricalMeasureVolume) ([]domain.AllocationNode, []string) {
	empty := make(map[int64]struct{})
	for _, v := range volumes {
		if v.Known() && v.Volume == 0 {
			empty[v.MeasureID] = struct{}{}
		}
	}
	if len(empty) == 0 {
		return nodes, nil
	}

	var (
		kept    = make([]domain.AllocationNode, 0, len(nodes))
		dropped []string
	)
	for _, n := range nodes {
		excluded := false
		for _, m := range n.MeasureSet {
			if _, ok := empty[m]; ok {
				excluded = true
				break
			}
		}
		if excluded {
			dropped = append(dropped, n.AllocationID)
			continue
		}
		kept = append(kept, n)
	}
	return kept, dropped
}
