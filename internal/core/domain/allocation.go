package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Mode is the lifecycle phase of a campaign's allocation.
type Mode string

const (
	// ModeInitialAllocation runs shorter periods over a wider node set to
	// learn valuations quickly.
	ModeInitialAllocation Mode = "initial"
	// ModeSteadyState is entered once the initial phase has elapsed and is
	// never left again.
	ModeSteadyState Mode = "steady"
)

// PerNodeInput is the per-node slice of BudgetAllocationInputs: the node's
// current valuation and cost estimate, its prior-period delivery and its
// lifetime counters.
type PerNodeInput struct {
	AllocationID          string          `json:"allocationId"`
	MeasureSet            MeasureSet      `json:"measureSet"`
	Valuation             decimal.Decimal `json:"valuation"`
	EstimatedCostPerMille decimal.Decimal `json:"estimatedCostPerMille"`
	PeriodSpend           decimal.Decimal `json:"periodSpend"`
	PeriodImpressions     int64           `json:"periodImpressions"`
	LifetimeSpend         decimal.Decimal `json:"lifetimeSpend"`
	LifetimeImpressions   int64           `json:"lifetimeImpressions"`
	ParentAllocationID    string          `json:"parentAllocationId,omitempty"`
	LineageNeutral        bool            `json:"lineageNeutral,omitempty"`
}

// Node converts the input into an AllocationNode.
func (in PerNodeInput) Node() AllocationNode {
	id := in.AllocationID
	set := NewMeasureSet(in.MeasureSet...)
	if id == "" {
		id = NewAllocationID(set)
	}
	return AllocationNode{
		AllocationID:          id,
		MeasureSet:            set,
		Valuation:             in.Valuation,
		EstimatedCostPerMille: in.EstimatedCostPerMille,
		LifetimeImpressions:   in.LifetimeImpressions,
		LifetimeSpend:         in.LifetimeSpend,
		ParentID:              in.ParentAllocationID,
		LineageNeutral:        in.LineageNeutral,
	}
}

// BudgetAllocationInputs is assembled fresh for each recomputation pass.
// PerMilleFees and Margin override the campaign parameters when set.
type BudgetAllocationInputs struct {
	CampaignID               int64                     `json:"campaignId"`
	TotalBudget              decimal.Decimal           `json:"totalBudget"`
	RemainingBudget          decimal.Decimal           `json:"remainingBudget"`
	StartTime                time.Time                 `json:"startTime"`
	EndTime                  time.Time                 `json:"endTime"`
	PeriodStart              time.Time                 `json:"periodStart"`
	PeriodDuration           Duration                  `json:"periodDuration"`
	ReallocationStartTime    time.Time                 `json:"reallocationStartTime"`
	PerMilleFees             decimal.Decimal           `json:"perMilleFees"`
	Margin                   decimal.Decimal           `json:"margin"`
	HistoricalMeasureVolumes []HistoricalMeasureVolume `json:"historicalMeasureVolumes"`
	Nodes                    []PerNodeInput            `json:"nodes"`
}

// PeriodEnd returns the end of the period the inputs describe.
func (in BudgetAllocationInputs) PeriodEnd() time.Time {
	return in.PeriodStart.Add(in.PeriodDuration.Std())
}

type inputsAlias BudgetAllocationInputs

type inputsWire struct {
	inputsAlias
	StartTime             Timestamp `json:"startTime"`
	EndTime               Timestamp `json:"endTime"`
	PeriodStart           Timestamp `json:"periodStart"`
	ReallocationStartTime Timestamp `json:"reallocationStartTime"`
}

// MarshalJSON renders timestamps in the UTC microsecond wire layout.
func (in BudgetAllocationInputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(inputsWire{
		inputsAlias:           inputsAlias(in),
		StartTime:             Timestamp(in.StartTime),
		EndTime:               Timestamp(in.EndTime),
		PeriodStart:           Timestamp(in.PeriodStart),
		ReallocationStartTime: Timestamp(in.ReallocationStartTime),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *BudgetAllocationInputs) UnmarshalJSON(b []byte) error {
	var w inputsWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*in = BudgetAllocationInputs(w.inputsAlias)
	in.StartTime = time.Time(w.StartTime)
	in.EndTime = time.Time(w.EndTime)
	in.PeriodStart = time.Time(w.PeriodStart)
	in.ReallocationStartTime = time.Time(w.ReallocationStartTime)
	return nil
}

// PerNodeResult is the allocation of one node for one period. Nodes
// outside the export set carry a zero MaxBid.
type PerNodeResult struct {
	AllocationID        string          `json:"allocationId"`
	MeasureSet          MeasureSet      `json:"measureSet"`
	PeriodImpressionCap int64           `json:"periodImpressionCap"`
	PeriodMediaBudget   decimal.Decimal `json:"periodMediaBudget"`
	PeriodTotalBudget   decimal.Decimal `json:"periodTotalBudget"`
	MaxBid              decimal.Decimal `json:"maxBid"`
}

// BudgetAllocationOutput is produced once per pass and never modified.
type BudgetAllocationOutput struct {
	LastModifiedDate       time.Time       `json:"lastModifiedDate"`
	AnticipatedSpendForDay decimal.Decimal `json:"anticipatedSpendForDay"`
	Results                []PerNodeResult `json:"results"`
}

// MediaBudget sums the media budget over all results.
func (o BudgetAllocationOutput) MediaBudget() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range o.Results {
		sum = sum.Add(r.PeriodMediaBudget)
	}
	return sum
}

type outputAlias BudgetAllocationOutput

type outputWire struct {
	outputAlias
	LastModifiedDate Timestamp `json:"lastModifiedDate"`
}

// MarshalJSON implements json.Marshaler. Results is always an array.
func (o BudgetAllocationOutput) MarshalJSON() ([]byte, error) {
	if o.Results == nil {
		o.Results = []PerNodeResult{}
	}
	return json.Marshal(outputWire{outputAlias: outputAlias(o), LastModifiedDate: Timestamp(o.LastModifiedDate)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *BudgetAllocationOutput) UnmarshalJSON(b []byte) error {
	var w outputWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*o = BudgetAllocationOutput(w.outputAlias)
	o.LastModifiedDate = time.Time(w.LastModifiedDate)
	return nil
}

// HistoryEntry pairs the inputs and output of one completed pass.
type HistoryEntry struct {
	PeriodStart time.Time              `json:"periodStart"`
	Mode        Mode                   `json:"mode"`
	Inputs      BudgetAllocationInputs `json:"inputs"`
	Output      BudgetAllocationOutput `json:"output"`
}

type historyAlias HistoryEntry

type historyWire struct {
	historyAlias
	PeriodStart Timestamp `json:"periodStart"`
}

// MarshalJSON implements json.Marshaler.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyWire{historyAlias: historyAlias(e), PeriodStart: Timestamp(e.PeriodStart)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *HistoryEntry) UnmarshalJSON(b []byte) error {
	var w historyWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = HistoryEntry(w.historyAlias)
	e.PeriodStart = time.Time(w.PeriodStart)
	return nil
}

// AllocationHistory is an append-only sequence of past passes ordered by
// period start. Entries are never modified in place.
type AllocationHistory struct {
	entries []HistoryEntry
}

// NewAllocationHistory builds a history from entries already ordered by
// period start.
func NewAllocationHistory(entries ...HistoryEntry) (*AllocationHistory, error) {
	h := &AllocationHistory{}
	for _, e := range entries {
		if err := h.Append(e); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Append adds e at the end. The period start must be strictly later than
// the latest entry's.
func (h *AllocationHistory) Append(e HistoryEntry) error {
	if n := len(h.entries); n > 0 && !e.PeriodStart.After(h.entries[n-1].PeriodStart) {
		return fmt.Errorf("%w: %s after %s", ErrHistoryOrder,
			e.PeriodStart.Format(time.RFC3339), h.entries[n-1].PeriodStart.Format(time.RFC3339))
	}
	h.entries = append(h.entries, e)
	return nil
}

// Latest returns the most recent entry.
func (h *AllocationHistory) Latest() (HistoryEntry, bool) {
	if h == nil || len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Range returns the entries whose period start lies in [from, to).
func (h *AllocationHistory) Range(from, to time.Time) []HistoryEntry {
	if h == nil {
		return nil
	}
	var out []HistoryEntry
	for _, e := range h.entries {
		if !e.PeriodStart.Before(from) && e.PeriodStart.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (h *AllocationHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// AllocationRecord is the versioned per-campaign allocation state. It is
// read at the start of a pass and written back with an expected version,
// so concurrent passes for one campaign cannot both commit.
type AllocationRecord struct {
	CampaignID            int64                   `json:"campaignId"`
	Version               int64                   `json:"version"`
	Mode                  Mode                    `json:"mode"`
	PeriodStart           time.Time               `json:"periodStart"`
	ReallocationStartTime time.Time               `json:"reallocationStartTime"`
	Output                *BudgetAllocationOutput `json:"output,omitempty"`
}

type recordAlias AllocationRecord

type recordWire struct {
	recordAlias
	PeriodStart           Timestamp `json:"periodStart"`
	ReallocationStartTime Timestamp `json:"reallocationStartTime"`
}

// MarshalJSON implements json.Marshaler.
func (r AllocationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordWire{
		recordAlias:           recordAlias(r),
		PeriodStart:           Timestamp(r.PeriodStart),
		ReallocationStartTime: Timestamp(r.ReallocationStartTime),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *AllocationRecord) UnmarshalJSON(b []byte) error {
	var w recordWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = AllocationRecord(w.recordAlias)
	r.PeriodStart = time.Time(w.PeriodStart)
	r.ReallocationStartTime = time.Time(w.ReallocationStartTime)
	return nil
}
