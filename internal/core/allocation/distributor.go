package allocation

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

const (
	centPlaces  = 2
	noisePlaces = 8
)

var (
	one      = decimal.NewFromInt(1)
	cent     = decimal.New(1, -centPlaces)
	thousand = decimal.NewFromInt(1000)
	day      = decimal.NewFromInt(int64(24 * time.Hour))
)

// Report describes how a pass spent its budget. It is diagnostic only and
// is not part of the persisted output.
type Report struct {
	Spendable decimal.Decimal
	Reserve   decimal.Decimal
	Allocated decimal.Decimal
	Unspent   decimal.Decimal
	// Unplaced is budget freed by dampening, capping or the floor that
	// found no eligible node in its tier.
	Unplaced     decimal.Decimal
	Ranked       int
	DroppedByCap int
	BelowFloor   []string
	Experiments  []string
}

// SpendableBudget returns the budget a pass may distribute:
// remaining × budgetBuffer × pacing, never more than the remaining budget,
// truncated to cents. Pacing is the share of the remaining campaign time
// covered by the period; it is 1 once the period reaches the campaign end.
func SpendableBudget(in domain.BudgetAllocationInputs, params domain.AllocationParameters) decimal.Decimal {
	remaining := in.RemainingBudget
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	pacing := one
	period := in.PeriodDuration.Std()
	if left := in.EndTime.Sub(in.PeriodStart); period > 0 && left > period {
		pacing = decimal.NewFromInt(int64(period)).Div(decimal.NewFromInt(int64(left)))
	}
	s := remaining.Mul(params.BudgetBuffer).Mul(pacing)
	return decimal.Min(s, remaining).Truncate(centPlaces)
}

// share is the working state of one node during distribution. Budgets stay
// exact until the final rounding step.
type share struct {
	node       RankedNode
	weight     decimal.Decimal
	damp       decimal.Decimal
	budget     decimal.Decimal
	capped     bool
	dropped    bool
	experiment bool
}

func (s *share) active() bool { return !s.dropped }

func (s *share) dampened() bool { return s.damp.LessThan(one) }

// Distribute converts a ranking and an experiment set into the period
// output. The order of operations is fixed:
//
//  1. spendable budget (SpendableBudget), minus the experiment reserve
//  2. tier pools weighted T, T-1, ..., 1 over non-empty funded tiers
//  3. within a tier, shares proportional to valuation
//  4. lineage dampening of derived nodes, freed budget to undampened nodes
//  5. capping at largestBudgetPercentAllowed × spendable with water-filling,
//     skipped for tiers at or above neutralBudgetCappingTier
//  6. dropping nodes below minBudget and refilling their tier; 5 and 6
//     repeat until nothing changes
//  7. half-even rounding to cents, residual absorbed by the largest
//     top-tier node
//
// lineage resolves parent links; when nil the node's own ParentID decides.
func Distribute(
	ranking Ranking,
	exp Experiments,
	in domain.BudgetAllocationInputs,
	params domain.AllocationParameters,
	lineage *domain.LineageIndex,
) (domain.BudgetAllocationOutput, Report, error) {
	spendable := SpendableBudget(in, params)
	report := Report{
		Spendable:    spendable,
		Reserve:      exp.Reserve,
		Ranked:       len(ranking.Nodes),
		DroppedByCap: len(ranking.Dropped),
	}
	out := domain.BudgetAllocationOutput{
		LastModifiedDate:       in.PeriodStart,
		AnticipatedSpendForDay: decimal.Zero,
		Results:                []domain.PerNodeResult{},
	}
	if ranking.Empty() || !spendable.IsPositive() {
		report.Allocated = decimal.Zero
		report.Unspent = spendable
		report.Unplaced = decimal.Zero
		return out, report, nil
	}
	if exp.Reserve.GreaterThan(spendable) {
		return out, report, fmt.Errorf("%w: experiment reserve %s exceeds spendable budget %s",
			domain.ErrInvariantViolation, exp.Reserve, spendable)
	}

	capAmount := params.LargestBudgetPercentAllowed.Mul(spendable)
	leftover := decimal.Zero

	var shares []*share
	for _, rn := range exp.Nodes {
		shares = append(shares, &share{node: rn, damp: one, budget: exp.Slot, experiment: true})
		report.Experiments = append(report.Experiments, rn.Node.AllocationID)
	}

	// tier pools
	tiers := make(map[int][]*share, ranking.FundedTiers)
	for _, rn := range ranking.Funded() {
		if exp.Contains(rn.Node.AllocationID) {
			continue
		}
		s := &share{
			node:   rn,
			weight: decimal.Max(rn.Node.Valuation, decimal.Zero),
			damp:   lineageMultiplier(rn.Node, params, lineage),
			budget: decimal.Zero,
		}
		tiers[rn.Tier] = append(tiers[rn.Tier], s)
		shares = append(shares, s)
	}
	totalWeight := decimal.Zero
	for t := range tiers {
		totalWeight = totalWeight.Add(tierWeight(t, ranking.FundedTiers))
	}

	distributable := spendable.Sub(exp.Reserve)
	for t := 1; t <= ranking.FundedTiers; t++ {
		members := tiers[t]
		if len(members) == 0 {
			continue
		}
		pool := distributable.Mul(tierWeight(t, ranking.FundedTiers)).Div(totalWeight)
		capEnabled := params.NeutralBudgetCappingTier <= 0 || t < params.NeutralBudgetCappingTier
		leftover = leftover.Add(fillTier(members, pool, capAmount, capEnabled, params.MinBudget))
	}

	for _, s := range shares {
		if s.dropped && !s.experiment {
			report.BelowFloor = append(report.BelowFloor, s.node.Node.AllocationID)
		}
	}
	slices.Sort(report.BelowFloor)

	active := slices.DeleteFunc(slices.Clone(shares), func(s *share) bool { return !s.active() })
	rounded := roundShares(active, capAmount, params)

	margin := in.Margin
	if !margin.IsPositive() {
		margin = params.Margin
	}

	results := make([]domain.PerNodeResult, 0, len(active))
	total := decimal.Zero
	for i, s := range active {
		media := rounded[i]
		if media.IsNegative() {
			return out, report, fmt.Errorf("%w: negative budget %s for node %s",
				domain.ErrInvariantViolation, media, s.node.Node.AllocationID)
		}
		total = total.Add(media)
		results = append(results, domain.PerNodeResult{
			AllocationID:        s.node.Node.AllocationID,
			MeasureSet:          s.node.Node.MeasureSet,
			PeriodImpressionCap: impressionCap(media, costPerMille(s.node.Node, params), params.MinimumImpressionCap),
			PeriodMediaBudget:   media,
			PeriodTotalBudget:   media.Div(margin).RoundBank(centPlaces),
			MaxBid:              decimal.Zero,
		})
	}
	if total.GreaterThan(in.RemainingBudget) {
		return out, report, fmt.Errorf("%w: allocated %s exceeds remaining budget %s",
			domain.ErrInvariantViolation, total, in.RemainingBudget)
	}

	slices.SortStableFunc(results, func(a, b domain.PerNodeResult) int {
		if c := b.PeriodMediaBudget.Cmp(a.PeriodMediaBudget); c != 0 {
			return c
		}
		return cmp.Compare(a.AllocationID, b.AllocationID)
	})
	cpms := make(map[string]decimal.Decimal, len(active))
	for _, s := range active {
		cpms[s.node.Node.AllocationID] = costPerMille(s.node.Node, params)
	}
	boost := one.Add(params.ExportBudgetBoost)
	for i := range results {
		if params.MaxNodesToExport > 0 && i >= params.MaxNodesToExport {
			break
		}
		results[i].MaxBid = cpms[results[i].AllocationID].Mul(boost).RoundBank(centPlaces)
	}

	out.Results = results
	out.AnticipatedSpendForDay = anticipatedDaily(total, in.PeriodDuration)
	report.Allocated = total
	report.Unspent = spendable.Sub(total)
	report.Unplaced = leftover
	return out, report, nil
}

// tierWeight gives funded tier t of T the weight T-t+1.
func tierWeight(t, funded int) decimal.Decimal {
	return decimal.NewFromInt(int64(funded - t + 1))
}

// lineageMultiplier returns the dampening factor of a node: 1 without a
// parent, lineagePenaltyNeutral for lineage-neutral derived nodes and
// lineagePenalty otherwise.
func lineageMultiplier(n domain.AllocationNode, params domain.AllocationParameters, lineage *domain.LineageIndex) decimal.Decimal {
	derived := n.HasParent()
	if lineage != nil {
		derived = lineage.Derived(n.AllocationID)
	}
	switch {
	case !derived:
		return one
	case n.LineageNeutral:
		return params.LineagePenaltyNeutral
	default:
		return params.LineagePenalty
	}
}

// fillTier distributes pool over members and returns the part that could
// not be placed.
func fillTier(members []*share, pool, capAmount decimal.Decimal, capEnabled bool, minBudget decimal.Decimal) decimal.Decimal {
	leftover := decimal.Zero

	spread(members, pool)

	freed := decimal.Zero
	for _, s := range members {
		if s.dampened() {
			reduced := s.budget.Mul(s.damp)
			freed = freed.Add(s.budget.Sub(reduced))
			s.budget = reduced
		}
	}
	if freed.IsPositive() {
		leftover = leftover.Add(redistribute(members, freed, func(s *share) bool {
			return s.active() && !s.dampened()
		}))
	}

	for {
		if capEnabled {
			leftover = leftover.Add(waterFill(members, capAmount))
		}

		moved := decimal.Zero
		dropped := 0
		for _, s := range members {
			if s.active() && (s.budget.LessThan(minBudget) || !s.budget.IsPositive()) {
				moved = moved.Add(s.budget)
				s.budget = decimal.Zero
				s.dropped = true
				dropped++
			}
		}
		if dropped == 0 {
			break
		}
		if moved.IsPositive() {
			leftover = leftover.Add(redistributeUncapped(members, moved))
		}
	}
	return leftover
}

// spread splits pool proportionally to weight, or evenly when all weights
// are zero.
func spread(members []*share, pool decimal.Decimal) {
	sum := decimal.Zero
	for _, s := range members {
		sum = sum.Add(s.weight)
	}
	n := decimal.NewFromInt(int64(len(members)))
	for _, s := range members {
		if sum.IsPositive() {
			s.budget = pool.Mul(s.weight).Div(sum)
		} else {
			s.budget = pool.Div(n)
		}
	}
}

// waterFill caps every budget at capAmount and hands the excess to the
// remaining uncapped nodes until no node exceeds the cap.
func waterFill(members []*share, capAmount decimal.Decimal) decimal.Decimal {
	leftover := decimal.Zero
	for {
		excess := decimal.Zero
		for _, s := range members {
			if s.active() && !s.capped && s.budget.GreaterThan(capAmount) {
				excess = excess.Add(s.budget.Sub(capAmount))
				s.budget = capAmount
				s.capped = true
			}
		}
		if !excess.IsPositive() {
			return leftover
		}
		leftover = leftover.Add(redistributeUncapped(members, excess))
	}
}

// redistributeUncapped prefers undampened recipients so lineage dampening
// is not undone by refills.
func redistributeUncapped(members []*share, amount decimal.Decimal) decimal.Decimal {
	rest := redistribute(members, amount, func(s *share) bool {
		return s.active() && !s.capped && !s.dampened()
	})
	if rest.IsZero() {
		return rest
	}
	return redistribute(members, rest, func(s *share) bool {
		return s.active() && !s.capped
	})
}

// redistribute adds amount to the members accepted by eligible,
// proportionally to weight. Without eligible members the amount is
// returned unplaced.
func redistribute(members []*share, amount decimal.Decimal, eligible func(*share) bool) decimal.Decimal {
	var recipients []*share
	sum := decimal.Zero
	for _, s := range members {
		if eligible(s) {
			recipients = append(recipients, s)
			sum = sum.Add(s.weight)
		}
	}
	if len(recipients) == 0 {
		return amount
	}
	n := decimal.NewFromInt(int64(len(recipients)))
	for _, s := range recipients {
		if sum.IsPositive() {
			s.budget = s.budget.Add(amount.Mul(s.weight).Div(sum))
		} else {
			s.budget = s.budget.Add(amount.Div(n))
		}
	}
	return decimal.Zero
}

// roundShares rounds every budget half-even to cents and moves the
// difference to the exact total, truncated to cents, onto the top-tier
// node with the largest allocation. A positive residual is only absorbed
// when it keeps that node within its cap.
func roundShares(active []*share, capAmount decimal.Decimal, params domain.AllocationParameters) []decimal.Decimal {
	rounded := make([]decimal.Decimal, len(active))
	exact := decimal.Zero
	sum := decimal.Zero
	for i, s := range active {
		exact = exact.Add(s.budget)
		rounded[i] = s.budget.RoundBank(centPlaces)
		sum = sum.Add(rounded[i])
	}
	// division noise sits far below the cent
	target := exact.Round(noisePlaces).Truncate(centPlaces)
	residual := target.Sub(sum)
	if residual.IsZero() || len(active) == 0 {
		return rounded
	}

	absorber := -1
	for i, s := range active {
		if s.experiment {
			continue
		}
		if absorber < 0 {
			absorber = i
			continue
		}
		a := active[absorber]
		switch {
		case s.node.Tier < a.node.Tier:
			absorber = i
		case s.node.Tier == a.node.Tier:
			if c := rounded[i].Cmp(rounded[absorber]); c > 0 ||
				(c == 0 && s.node.Node.AllocationID < a.node.Node.AllocationID) {
				absorber = i
			}
		}
	}
	if absorber < 0 {
		absorber = 0
	}

	adjusted := rounded[absorber].Add(residual)
	s := active[absorber]
	if residual.IsPositive() {
		capEnabled := params.NeutralBudgetCappingTier <= 0 || s.node.Tier < params.NeutralBudgetCappingTier
		if !s.experiment && capEnabled && adjusted.GreaterThan(capAmount) {
			return rounded
		}
		rounded[absorber] = adjusted
		return rounded
	}
	if s.experiment || adjusted.GreaterThanOrEqual(params.MinBudget) {
		rounded[absorber] = adjusted
		return rounded
	}

	// take single cents from the largest budgets without crossing the floor
	order := make([]int, 0, len(active))
	for i, s := range active {
		if !s.experiment {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := rounded[b].Cmp(rounded[a]); c != 0 {
			return c
		}
		return cmp.Compare(active[a].node.Node.AllocationID, active[b].node.Node.AllocationID)
	})
	for residual.IsNegative() {
		progress := false
		for _, i := range order {
			if !residual.IsNegative() {
				break
			}
			if next := rounded[i].Sub(cent); next.GreaterThanOrEqual(params.MinBudget) {
				rounded[i] = next
				residual = residual.Add(cent)
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return rounded
}

// impressionCap converts a media budget into impressions at the node's
// estimated cost per mille, floored at minimum. Fees are part of the total
// budget, not of the media budget, so they do not enter the cap.
func impressionCap(media, cpm decimal.Decimal, minimum int64) int64 {
	if !cpm.IsPositive() {
		return minimum
	}
	return max(media.Mul(thousand).Div(cpm).IntPart(), minimum)
}

// anticipatedDaily scales the period spend to a 24h day.
func anticipatedDaily(total decimal.Decimal, period domain.Duration) decimal.Decimal {
	if period <= 0 {
		return total.RoundBank(centPlaces)
	}
	return total.Mul(day).Div(decimal.NewFromInt(int64(period))).RoundBank(centPlaces)
}
