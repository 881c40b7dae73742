package allocation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

var t0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testParams returns defaults without experiments, so scenario tests only
// exercise what they configure.
func testParams() domain.AllocationParameters {
	p := domain.DefaultParameters()
	p.UnderSpendExperimentNodeCount = 0
	return p
}

func nodeInput(id, valuation string) domain.PerNodeInput {
	return domain.PerNodeInput{
		AllocationID:          id,
		Valuation:             dec(valuation),
		EstimatedCostPerMille: dec("2.50"),
	}
}

// singlePeriodInputs describes a campaign whose last period starts now, so
// pacing is 1 and the spendable budget is min(remaining × buffer, remaining).
func singlePeriodInputs(remaining string, nodes ...domain.PerNodeInput) domain.BudgetAllocationInputs {
	return domain.BudgetAllocationInputs{
		CampaignID:            7,
		TotalBudget:           dec(remaining),
		RemainingBudget:       dec(remaining),
		StartTime:             t0,
		EndTime:               t0.Add(24 * time.Hour),
		PeriodStart:           t0,
		PeriodDuration:        domain.Duration(24 * time.Hour),
		ReallocationStartTime: t0,
		Nodes:                 nodes,
	}
}

func rankedNodes(n int) []domain.AllocationNode {
	out := make([]domain.AllocationNode, n)
	for i := range out {
		out[i] = domain.AllocationNode{
			AllocationID:          fmt.Sprintf("n%03d", i),
			Valuation:             decimal.NewFromInt(int64(1000 - i)),
			EstimatedCostPerMille: dec("2.50"),
		}
	}
	return out
}

func resultsByID(out domain.BudgetAllocationOutput) map[string]domain.PerNodeResult {
	m := make(map[string]domain.PerNodeResult, len(out.Results))
	for _, r := range out.Results {
		m[r.AllocationID] = r
	}
	return m
}
