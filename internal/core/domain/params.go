package domain

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxTiers bounds the number of tiers when MaxTiers is left unset.
const DefaultMaxTiers = 10

// AllocationParameters are the campaign-scoped knobs of the allocation
// engine. Currency and ratio values are fixed-precision decimals. A zero
// node-count cap (AllocationTopTier, AllocationNumberOfNodes,
// InitialMaxNumberOfNodes, MaxNodesToExport) means "unlimited".
type AllocationParameters struct {
	DefaultEstimatedCostPerMille decimal.Decimal `json:"defaultEstimatedCostPerMille"`
	// Margin converts media budget into total budget: total = media / margin.
	Margin       decimal.Decimal `json:"margin"`
	PerMilleFees decimal.Decimal `json:"perMilleFees"`
	// BudgetBuffer scales the paced remaining budget to leave headroom
	// against estimation error. The result never exceeds the remaining budget.
	BudgetBuffer decimal.Decimal `json:"budgetBuffer"`

	InitialAllocationTotalPeriodDuration  Duration `json:"initialAllocationTotalPeriodDuration"`
	InitialAllocationSinglePeriodDuration Duration `json:"initialAllocationSinglePeriodDuration"`
	PeriodDuration                        Duration `json:"periodDuration"`

	AllocationTopTier             int `json:"allocationTopTier"`
	NumberOfTiersToAllocateTo     int `json:"numberOfTiersToAllocateTo"`
	MaxTiers                      int `json:"maxTiers,omitempty"`
	AllocationNumberOfNodes       int `json:"allocationNumberOfNodes"`
	InitialMaxNumberOfNodes       int `json:"initialMaxNumberOfNodes"`
	MaxNodesToExport              int `json:"maxNodesToExport"`
	UnderSpendExperimentNodeCount int `json:"underSpendExperimentNodeCount"`
	UnderSpendExperimentTier      int `json:"underSpendExperimentTier"`
	NeutralBudgetCappingTier      int `json:"neutralBudgetCappingTier"`

	MinBudget                   decimal.Decimal `json:"minBudget"`
	ExportBudgetBoost           decimal.Decimal `json:"exportBudgetBoost"`
	LargestBudgetPercentAllowed decimal.Decimal `json:"largestBudgetPercentAllowed"`
	LineagePenalty              decimal.Decimal `json:"lineagePenalty"`
	// LineagePenaltyNeutral is the milder multiplier applied to derived
	// nodes flagged lineage-neutral. 1 exempts them entirely.
	LineagePenaltyNeutral decimal.Decimal `json:"lineagePenaltyNeutral"`
	MinimumImpressionCap  int64           `json:"minimumImpressionCap"`
}

// DefaultParameters returns the parameter set used when nothing else is
// configured.
func DefaultParameters() AllocationParameters {
	return AllocationParameters{
		DefaultEstimatedCostPerMille:          decimal.RequireFromString("2.50"),
		Margin:                                decimal.RequireFromString("0.85"),
		PerMilleFees:                          decimal.RequireFromString("0.10"),
		BudgetBuffer:                          decimal.RequireFromString("1.1"),
		InitialAllocationTotalPeriodDuration:  Duration(72 * time.Hour),
		InitialAllocationSinglePeriodDuration: Duration(4 * time.Hour),
		PeriodDuration:                        Duration(24 * time.Hour),
		AllocationTopTier:                     10,
		NumberOfTiersToAllocateTo:             3,
		MaxTiers:                              DefaultMaxTiers,
		AllocationNumberOfNodes:               50,
		InitialMaxNumberOfNodes:               100,
		MaxNodesToExport:                      40,
		UnderSpendExperimentNodeCount:         3,
		UnderSpendExperimentTier:              3,
		NeutralBudgetCappingTier:              3,
		MinBudget:                             decimal.RequireFromString("5.00"),
		ExportBudgetBoost:                     decimal.RequireFromString("0.10"),
		LargestBudgetPercentAllowed:           decimal.RequireFromString("0.25"),
		LineagePenalty:                        decimal.RequireFromString("0.8"),
		LineagePenaltyNeutral:                 decimal.NewFromInt(1),
		MinimumImpressionCap:                  1000,
	}
}

// TierLimit returns the configured maximum number of tiers.
func (p AllocationParameters) TierLimit() int {
	if p.MaxTiers <= 0 {
		return DefaultMaxTiers
	}
	return p.MaxTiers
}

// NodeCap returns the ranked-node cap for the given mode; 0 means no cap.
func (p AllocationParameters) NodeCap(mode Mode) int {
	if mode == ModeInitialAllocation {
		return p.InitialMaxNumberOfNodes
	}
	return p.AllocationNumberOfNodes
}

// PeriodLength returns the period duration for the given mode.
func (p AllocationParameters) PeriodLength(mode Mode) time.Duration {
	if mode == ModeInitialAllocation {
		return p.InitialAllocationSinglePeriodDuration.Std()
	}
	return p.PeriodDuration.Std()
}

// Validate checks every parameter against its documented range. All
// violations are reported together, wrapped in ErrInvalidParameters.
func (p AllocationParameters) Validate() error {
	var errs []error
	one := decimal.NewFromInt(1)

	nonNegDec := map[string]decimal.Decimal{
		"defaultEstimatedCostPerMille": p.DefaultEstimatedCostPerMille,
		"perMilleFees":                 p.PerMilleFees,
		"minBudget":                    p.MinBudget,
		"exportBudgetBoost":            p.ExportBudgetBoost,
		"lineagePenalty":               p.LineagePenalty,
		"lineagePenaltyNeutral":        p.LineagePenaltyNeutral,
	}
	for _, name := range sortedKeys(nonNegDec) {
		if nonNegDec[name].IsNegative() {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %s", name, nonNegDec[name]))
		}
	}

	nonNegInt := map[string]int64{
		"allocationTopTier":             int64(p.AllocationTopTier),
		"allocationNumberOfNodes":       int64(p.AllocationNumberOfNodes),
		"initialMaxNumberOfNodes":       int64(p.InitialMaxNumberOfNodes),
		"maxNodesToExport":              int64(p.MaxNodesToExport),
		"underSpendExperimentNodeCount": int64(p.UnderSpendExperimentNodeCount),
		"underSpendExperimentTier":      int64(p.UnderSpendExperimentTier),
		"neutralBudgetCappingTier":      int64(p.NeutralBudgetCappingTier),
		"minimumImpressionCap":          p.MinimumImpressionCap,
		"maxTiers":                      int64(p.MaxTiers),
	}
	for _, name := range sortedKeys(nonNegInt) {
		if nonNegInt[name] < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", name, nonNegInt[name]))
		}
	}

	if !p.Margin.IsPositive() || p.Margin.GreaterThan(one) {
		errs = append(errs, fmt.Errorf("margin must be in (0,1], got %s", p.Margin))
	}
	if !p.LargestBudgetPercentAllowed.IsPositive() || p.LargestBudgetPercentAllowed.GreaterThan(one) {
		errs = append(errs, fmt.Errorf("largestBudgetPercentAllowed must be in (0,1], got %s", p.LargestBudgetPercentAllowed))
	}
	if !p.BudgetBuffer.IsPositive() {
		errs = append(errs, fmt.Errorf("budgetBuffer must be positive, got %s", p.BudgetBuffer))
	}
	if p.LineagePenalty.GreaterThan(p.LineagePenaltyNeutral) || p.LineagePenaltyNeutral.GreaterThan(one) {
		errs = append(errs, fmt.Errorf("want lineagePenalty <= lineagePenaltyNeutral <= 1, got %s and %s",
			p.LineagePenalty, p.LineagePenaltyNeutral))
	}

	maxTiers := p.TierLimit()
	if p.NumberOfTiersToAllocateTo < 1 || p.NumberOfTiersToAllocateTo > maxTiers {
		errs = append(errs, fmt.Errorf("numberOfTiersToAllocateTo must be in [1,%d], got %d", maxTiers, p.NumberOfTiersToAllocateTo))
	}
	if p.UnderSpendExperimentNodeCount > 0 &&
		(p.UnderSpendExperimentTier < 1 || p.UnderSpendExperimentTier > p.NumberOfTiersToAllocateTo+1) {
		errs = append(errs, fmt.Errorf("underSpendExperimentTier must be in [1,%d], got %d",
			p.NumberOfTiersToAllocateTo+1, p.UnderSpendExperimentTier))
	}
	if p.NeutralBudgetCappingTier > maxTiers+1 {
		errs = append(errs, fmt.Errorf("neutralBudgetCappingTier must be at most %d, got %d", maxTiers+1, p.NeutralBudgetCappingTier))
	}

	if p.PeriodDuration <= 0 {
		errs = append(errs, fmt.Errorf("periodDuration must be positive, got %s", p.PeriodDuration))
	}
	if p.InitialAllocationTotalPeriodDuration < 0 {
		errs = append(errs, fmt.Errorf("initialAllocationTotalPeriodDuration must be non-negative, got %s", p.InitialAllocationTotalPeriodDuration))
	}
	if p.InitialAllocationTotalPeriodDuration > 0 && p.InitialAllocationSinglePeriodDuration <= 0 {
		errs = append(errs, fmt.Errorf("initialAllocationSinglePeriodDuration must be positive while an initial allocation phase is configured"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParameters, errors.Join(errs...))
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
