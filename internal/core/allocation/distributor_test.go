package allocation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesa-alloc/internal/core/domain"
)

func TestSpendableBudget(t *testing.T) {
	p := testParams()

	in := singlePeriodInputs("10000")
	assert.True(t, SpendableBudget(in, p).Equal(dec("10000")), "buffer never exceeds remaining")

	in.EndTime = t0.Add(96 * time.Hour)
	in.RemainingBudget = dec("1000")
	assert.True(t, SpendableBudget(in, p).Equal(dec("275")), "paced to a quarter of the remaining time")

	in.RemainingBudget = dec("0")
	assert.True(t, SpendableBudget(in, p).IsZero())
}

func TestDistributeEqualValuations(t *testing.T) {
	p := testParams()
	p.NumberOfTiersToAllocateTo = 1
	p.LargestBudgetPercentAllowed = dec("1")

	in := singlePeriodInputs("10000", nodeInput("a", "50"), nodeInput("b", "50"))
	res, err := Allocate(in, p, domain.ModeSteadyState)
	require.NoError(t, err)
	require.Len(t, res.Output.Results, 2)

	a, b := res.Output.Results[0], res.Output.Results[1]
	assert.True(t, a.PeriodMediaBudget.Equal(b.PeriodMediaBudget))
	assert.True(t, a.PeriodMediaBudget.Equal(dec("5000")))
	assert.True(t, res.Output.MediaBudget().LessThanOrEqual(dec("11000")))
	assert.True(t, a.PeriodTotalBudget.Equal(dec("5882.35")))
	assert.True(t, res.Output.AnticipatedSpendForDay.Equal(dec("10000")))
	assert.Equal(t, t0, res.Output.LastModifiedDate)
}

func TestDistributeBelowFloorRedistributedInTier(t *testing.T) {
	p := testParams()
	p.MinBudget = dec("100")
	p.LargestBudgetPercentAllowed = dec("1")

	// tiers: {t1a, t1b}, {t2a, t2b}, {big, small}; tier pools 600/400/200
	in := singlePeriodInputs("1200",
		nodeInput("t1a", "100"), nodeInput("t1b", "90"),
		nodeInput("t2a", "80"), nodeInput("t2b", "70"),
		nodeInput("big", "8"), nodeInput("small", "2"),
	)
	res, err := Allocate(in, p, domain.ModeSteadyState)
	require.NoError(t, err)

	got := resultsByID(res.Output)
	assert.NotContains(t, got, "small")
	assert.True(t, got["big"].PeriodMediaBudget.Equal(dec("200")))
	assert.Equal(t, []string{"small"}, res.Report.BelowFloor)
	for _, r := range res.Output.Results {
		assert.True(t, r.PeriodMediaBudget.GreaterThanOrEqual(p.MinBudget), r.AllocationID)
	}
	assert.True(t, res.Output.MediaBudget().Equal(dec("1200")))
}

func TestDistributeLineageDampening(t *testing.T) {
	p := testParams()
	p.NumberOfTiersToAllocateTo = 1
	p.LargestBudgetPercentAllowed = dec("1")
	p.LineagePenalty = dec("0.8")
	p.LineagePenaltyNeutral = dec("1")

	penalized := nodeInput("penalized", "50")
	penalized.ParentAllocationID = "root"
	neutral := nodeInput("neutral", "50")
	neutral.ParentAllocationID = "root"
	neutral.LineageNeutral = true

	res, err := Allocate(singlePeriodInputs("10000", penalized, neutral), p, domain.ModeSteadyState)
	require.NoError(t, err)

	got := resultsByID(res.Output)
	assert.True(t, got["penalized"].PeriodMediaBudget.LessThanOrEqual(got["neutral"].PeriodMediaBudget))
	assert.True(t, got["penalized"].PeriodMediaBudget.Equal(dec("4000")))
	assert.True(t, got["neutral"].PeriodMediaBudget.Equal(dec("6000")))
}

func TestDistributeCapWaterFill(t *testing.T) {
	p := testParams()
	p.NumberOfTiersToAllocateTo = 1
	p.LargestBudgetPercentAllowed = dec("0.4")
	p.MinBudget = dec("0")

	in := singlePeriodInputs("1000",
		nodeInput("a", "70"), nodeInput("b", "20"), nodeInput("c", "10"),
	)
	res, err := Allocate(in, p, domain.ModeSteadyState)
	require.NoError(t, err)

	got := resultsByID(res.Output)
	assert.True(t, got["a"].PeriodMediaBudget.Equal(dec("400")))
	assert.True(t, got["b"].PeriodMediaBudget.Equal(dec("400")))
	assert.True(t, got["c"].PeriodMediaBudget.Equal(dec("200")))
}

func TestDistributeCapExemptTier(t *testing.T) {
	p := testParams()
	p.NumberOfTiersToAllocateTo = 1
	p.LargestBudgetPercentAllowed = dec("0.1")
	p.NeutralBudgetCappingTier = 1

	in := singlePeriodInputs("1000", nodeInput("a", "70"), nodeInput("b", "30"))
	res, err := Allocate(in, p, domain.ModeSteadyState)
	require.NoError(t, err)

	got := resultsByID(res.Output)
	assert.True(t, got["a"].PeriodMediaBudget.Equal(dec("700")))
	assert.True(t, got["b"].PeriodMediaBudget.Equal(dec("300")))
}

func TestDistributeAllCappedLeavesUnplaced(t *testing.T) {
	p := testParams()
	p.NumberOfTiersToAllocateTo = 1
	p.LargestBudgetPercentAllowed = dec("0.25")
	p.MinBudget = dec("0")

	in := singlePeriodInputs("1000", nodeInput("a", "50"), nodeInput("b", "50"))
	res, err := Allocate(in, p, domain.ModeSteadyState)
	require.NoError(t, err)

	assert.True(t, res.Output.MediaBudget().Equal(dec("500")))
	assert.True(t, res.Report.Unspent.Equal(dec("500")))
	assert.True(t, res.Report.Unplaced.Equal(dec("500")))
}

func TestDistributeImpressionCapAndBids(t *testing.T) {
	p := testParams()
	p.NumberOfTiersToAllocateTo = 1
	p.LargestBudgetPercentAllowed = dec("1")
	p.MaxNodesToExport = 1
	p.MinimumImpressionCap = 1000

	big := nodeInput("big", "90")
	small := nodeInput("small", "10")
	small.EstimatedCostPerMille = dec("0.40")

	in := singlePeriodInputs("100", big, small)
	in.PerMilleFees = dec("0.10")
	res, err := Allocate(in, p, domain.ModeSteadyState)
	require.NoError(t, err)
	require.Len(t, res.Output.Results, 2)

	first, second := res.Output.Results[0], res.Output.Results[1]
	assert.Equal(t, "big", first.AllocationID, "highest budget first")
	assert.True(t, first.PeriodMediaBudget.Equal(dec("90")))
	assert.True(t, first.MaxBid.Equal(dec("2.75")))
	assert.True(t, second.MaxBid.IsZero(), "outside the export set")
	// 90 × 1000 / 2.50, fees do not lower the cap
	assert.Equal(t, int64(36000), first.PeriodImpressionCap)
	// 10 × 1000 / 0.40
	assert.Equal(t, int64(25000), second.PeriodImpressionCap)
}

func TestImpressionCapFloor(t *testing.T) {
	assert.Equal(t, int64(1000), impressionCap(dec("1"), dec("2.50"), 1000))
	assert.Equal(t, int64(1000), impressionCap(dec("1"), dec("0"), 1000))
	assert.Equal(t, int64(400), impressionCap(dec("1"), dec("2.50"), 0))
}

func TestDistributeEmptyRanking(t *testing.T) {
	res, err := Allocate(singlePeriodInputs("1000"), testParams(), domain.ModeSteadyState)
	require.NoError(t, err)
	assert.Empty(t, res.Output.Results)
	assert.True(t, res.Output.AnticipatedSpendForDay.IsZero())
	assert.True(t, res.Report.Unspent.Equal(dec("1000")))
}

func TestDistributeReserveAboveSpendable(t *testing.T) {
	p := testParams()
	r := Rank(rankedNodes(3), p, domain.ModeSteadyState)
	exp := Experiments{Nodes: r.Tier(3), Slot: dec("50"), Reserve: dec("50")}

	_, _, err := Distribute(r, exp, singlePeriodInputs("10"), p, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

// TestDistributeInvariants sweeps budgets, node counts and parameters and
// checks the properties every output must satisfy.
func TestDistributeInvariants(t *testing.T) {
	budgets := []string{"3.17", "99.99", "1000", "12345.67", "250000"}
	tiers := []int{1, 2, 3, 5}
	counts := []int{1, 2, 7, 30, 120}

	for _, budget := range budgets {
		for _, tc := range tiers {
			for _, n := range counts {
				t.Run(fmt.Sprintf("%s/%d/%d", budget, tc, n), func(t *testing.T) {
					p := domain.DefaultParameters()
					p.NumberOfTiersToAllocateTo = tc
					p.UnderSpendExperimentTier = tc
					p.AllocationTopTier = 4

					nodes := make([]domain.PerNodeInput, n)
					for i := range nodes {
						nodes[i] = nodeInput(fmt.Sprintf("n%03d", i), decimal.NewFromInt(int64((i*37)%11)).String())
						if i%4 == 3 {
							nodes[i].ParentAllocationID = "n000"
							nodes[i].LineageNeutral = i%8 == 7
						}
					}
					in := singlePeriodInputs(budget, nodes...)
					in.EndTime = t0.Add(72 * time.Hour)

					for _, mode := range []domain.Mode{domain.ModeInitialAllocation, domain.ModeSteadyState} {
						res, err := Allocate(in, p, mode)
						require.NoError(t, err)

						sum := res.Output.MediaBudget()
						assert.True(t, sum.LessThanOrEqual(in.RemainingBudget), "sum %s", sum)
						assert.True(t, sum.LessThanOrEqual(res.Report.Spendable))
						assert.LessOrEqual(t, len(res.Ranking.Tier(1)), p.AllocationTopTier)
						assert.LessOrEqual(t, len(res.Ranking.Nodes), p.NodeCap(mode))
						for _, r := range res.Output.Results {
							assert.True(t, r.PeriodMediaBudget.GreaterThanOrEqual(p.MinBudget), "%s: %s", r.AllocationID, r.PeriodMediaBudget)
							assert.True(t, r.PeriodMediaBudget.Equal(r.PeriodMediaBudget.Round(2)))
							assert.True(t, r.PeriodTotalBudget.Equal(r.PeriodMediaBudget.Div(p.Margin).RoundBank(2)))
							assert.GreaterOrEqual(t, r.PeriodImpressionCap, p.MinimumImpressionCap)
						}
					}
				})
			}
		}
	}
}
