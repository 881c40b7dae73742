package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

// AllocationUseCase is the primary port into the allocation lifecycle. The
// HTTP adapter, the NATS dispatcher and the scheduler all drive it.
type AllocationUseCase interface {
	// RunPass runs one allocation pass for a campaign when its period
	// boundary has been reached. Triggering it again before the next
	// boundary is a no-op reported as PassSkipped.
	RunPass(ctx context.Context, req PassRequest) (*PassResult, error)

	// Latest returns the campaign's current allocation record.
	Latest(ctx context.Context, campaignID int64) (*domain.AllocationRecord, error)

	// History returns committed passes with period start in [from, to).
	History(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.HistoryEntry, error)

	// Simulate runs the engine on caller supplied inputs without reading
	// or writing any state.
	Simulate(ctx context.Context, req SimulateRequest) (*SimulateResult, error)
}

// PassStatus is the outcome of RunPass.
type PassStatus string

const (
	PassCompleted PassStatus = "completed"
	PassSkipped   PassStatus = "skipped"
	// PassTerminal means the campaign has ended; the last output stays
	// authoritative.
	PassTerminal PassStatus = "terminal"
)

// PassRequest is the work item of one pass. PeriodStart is optional; when
// set, the pass only runs if it matches the period the campaign is due for.
type PassRequest struct {
	CampaignID  int64      `json:"campaignId"`
	PeriodStart *time.Time `json:"periodStart,omitempty"`
}

type passRequestWire struct {
	CampaignID  int64             `json:"campaignId"`
	PeriodStart *domain.Timestamp `json:"periodStart,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r PassRequest) MarshalJSON() ([]byte, error) {
	w := passRequestWire{CampaignID: r.CampaignID}
	if r.PeriodStart != nil {
		w.PeriodStart = optionalTimestamp(*r.PeriodStart)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *PassRequest) UnmarshalJSON(b []byte) error {
	var w passRequestWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.CampaignID = w.CampaignID
	r.PeriodStart = nil
	if w.PeriodStart != nil {
		t := time.Time(*w.PeriodStart)
		r.PeriodStart = &t
	}
	return nil
}

// PassResult describes what a pass did. Output is set for completed passes
// and, for skipped passes, holds the output that stays authoritative.
type PassResult struct {
	CampaignID            int64
	Status                PassStatus
	Reason                string
	Mode                  domain.Mode
	PeriodStart           time.Time
	ReallocationStartTime time.Time
	Version               int64
	Attempts              int
	Output                *domain.BudgetAllocationOutput
}

type passResultWire struct {
	CampaignID            int64                          `json:"campaignId"`
	Status                PassStatus                     `json:"status"`
	Reason                string                         `json:"reason,omitempty"`
	Mode                  domain.Mode                    `json:"mode,omitempty"`
	PeriodStart           *domain.Timestamp              `json:"periodStart,omitempty"`
	ReallocationStartTime *domain.Timestamp              `json:"reallocationStartTime,omitempty"`
	Version               int64                          `json:"version"`
	Attempts              int                            `json:"attempts,omitempty"`
	Output                *domain.BudgetAllocationOutput `json:"output,omitempty"`
}

// MarshalJSON implements json.Marshaler. Zero times are omitted.
func (r PassResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(passResultWire{
		CampaignID:            r.CampaignID,
		Status:                r.Status,
		Reason:                r.Reason,
		Mode:                  r.Mode,
		PeriodStart:           optionalTimestamp(r.PeriodStart),
		ReallocationStartTime: optionalTimestamp(r.ReallocationStartTime),
		Version:               r.Version,
		Attempts:              r.Attempts,
		Output:                r.Output,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *PassResult) UnmarshalJSON(b []byte) error {
	var w passResultWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = PassResult{
		CampaignID: w.CampaignID,
		Status:     w.Status,
		Reason:     w.Reason,
		Mode:       w.Mode,
		Version:    w.Version,
		Attempts:   w.Attempts,
		Output:     w.Output,
	}
	if w.PeriodStart != nil {
		r.PeriodStart = time.Time(*w.PeriodStart)
	}
	if w.ReallocationStartTime != nil {
		r.ReallocationStartTime = time.Time(*w.ReallocationStartTime)
	}
	return nil
}

func optionalTimestamp(t time.Time) *domain.Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := domain.Timestamp(t)
	return &ts
}

// SimulateRequest carries everything a dry run needs. A nil Params uses
// the service defaults.
type SimulateRequest struct {
	Inputs domain.BudgetAllocationInputs `json:"inputs"`
	Params *domain.AllocationParameters  `json:"params,omitempty"`
	Mode   domain.Mode                   `json:"mode,omitempty"`
}

// SimulateResult is the output of a dry run plus the distribution report.
type SimulateResult struct {
	Output      domain.BudgetAllocationOutput `json:"output"`
	Spendable   decimal.Decimal               `json:"spendable"`
	Reserve     decimal.Decimal               `json:"reserve"`
	Allocated   decimal.Decimal               `json:"allocated"`
	Unspent     decimal.Decimal               `json:"unspent"`
	Ranked      int                           `json:"ranked"`
	Dropped     []string                      `json:"dropped"`
	BelowFloor  []string                      `json:"belowFloor"`
	Experiments []string                      `json:"experiments"`
	Unavailable []string                      `json:"unavailable"`
}
