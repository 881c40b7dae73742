package configs

import (
	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

// Allocation holds the default AllocationParameters of the service. Every
// knob maps to one ALLOC_ variable; decimals and durations are parsed via
// their text unmarshalers, so "1.1", "24h" and "1.00:00:00" are all valid.
type Allocation struct {
	DefaultEstimatedCostPerMille decimal.Decimal `env:"DEFAULT_CPM" envDefault:"2.50"`
	Margin                       decimal.Decimal `env:"MARGIN" envDefault:"0.85"`
	PerMilleFees                 decimal.Decimal `env:"PER_MILLE_FEES" envDefault:"0.10"`
	BudgetBuffer                 decimal.Decimal `env:"BUDGET_BUFFER" envDefault:"1.1"`

	InitialTotalPeriod  domain.Duration `env:"INITIAL_TOTAL_PERIOD" envDefault:"72h"`
	InitialSinglePeriod domain.Duration `env:"INITIAL_SINGLE_PERIOD" envDefault:"4h"`
	PeriodDuration      domain.Duration `env:"PERIOD_DURATION" envDefault:"24h"`

	TopTier                       int `env:"TOP_TIER" envDefault:"10"`
	Tiers                         int `env:"TIERS" envDefault:"3"`
	MaxTiers                      int `env:"MAX_TIERS" envDefault:"10"`
	NumberOfNodes                 int `env:"NUMBER_OF_NODES" envDefault:"50"`
	InitialMaxNumberOfNodes       int `env:"INITIAL_MAX_NUMBER_OF_NODES" envDefault:"100"`
	MaxNodesToExport              int `env:"MAX_NODES_TO_EXPORT" envDefault:"40"`
	UnderSpendExperimentNodeCount int `env:"EXPERIMENT_NODE_COUNT" envDefault:"3"`
	UnderSpendExperimentTier      int `env:"EXPERIMENT_TIER" envDefault:"3"`
	NeutralBudgetCappingTier      int `env:"NEUTRAL_CAPPING_TIER" envDefault:"3"`

	MinBudget                   decimal.Decimal `env:"MIN_BUDGET" envDefault:"5.00"`
	ExportBudgetBoost           decimal.Decimal `env:"EXPORT_BUDGET_BOOST" envDefault:"0.10"`
	LargestBudgetPercentAllowed decimal.Decimal `env:"LARGEST_BUDGET_PERCENT" envDefault:"0.25"`
	LineagePenalty              decimal.Decimal `env:"LINEAGE_PENALTY" envDefault:"0.8"`
	LineagePenaltyNeutral       decimal.Decimal `env:"LINEAGE_PENALTY_NEUTRAL" envDefault:"1"`
	MinimumImpressionCap        int64           `env:"MINIMUM_IMPRESSION_CAP" envDefault:"1000"`

	// ConflictRetries bounds the whole-pass retries after a version
	// conflict on the allocation record.
	ConflictRetries uint `env:"CONFLICT_RETRIES" envDefault:"5"`
}

// Params converts the configuration into engine parameters. The result is
// not validated; the engine does that on every pass.
func (c Allocation) Params() domain.AllocationParameters {
	return domain.AllocationParameters{
		DefaultEstimatedCostPerMille:          c.DefaultEstimatedCostPerMille,
		Margin:                                c.Margin,
		PerMilleFees:                          c.PerMilleFees,
		BudgetBuffer:                          c.BudgetBuffer,
		InitialAllocationTotalPeriodDuration:  c.InitialTotalPeriod,
		InitialAllocationSinglePeriodDuration: c.InitialSinglePeriod,
		PeriodDuration:                        c.PeriodDuration,
		AllocationTopTier:                     c.TopTier,
		NumberOfTiersToAllocateTo:             c.Tiers,
		MaxTiers:                              c.MaxTiers,
		AllocationNumberOfNodes:               c.NumberOfNodes,
		InitialMaxNumberOfNodes:               c.InitialMaxNumberOfNodes,
		MaxNodesToExport:                      c.MaxNodesToExport,
		UnderSpendExperimentNodeCount:         c.UnderSpendExperimentNodeCount,
		UnderSpendExperimentTier:              c.UnderSpendExperimentTier,
		NeutralBudgetCappingTier:              c.NeutralBudgetCappingTier,
		MinBudget:                             c.MinBudget,
		ExportBudgetBoost:                     c.ExportBudgetBoost,
		LargestBudgetPercentAllowed:           c.LargestBudgetPercentAllowed,
		LineagePenalty:                        c.LineagePenalty,
		LineagePenaltyNeutral:                 c.LineagePenaltyNeutral,
		MinimumImpressionCap:                  c.MinimumImpressionCap,
	}
}
