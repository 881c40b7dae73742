package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func entryAt(d time.Duration) HistoryEntry {
	return HistoryEntry{PeriodStart: start.Add(d), Mode: ModeSteadyState}
}

func TestAllocationHistoryAppendOnly(t *testing.T) {
	h, err := NewAllocationHistory(entryAt(0), entryAt(time.Hour), entryAt(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, start.Add(2*time.Hour), latest.PeriodStart)

	err = h.Append(entryAt(time.Hour))
	assert.True(t, errors.Is(err, ErrHistoryOrder))
	err = h.Append(entryAt(2 * time.Hour))
	assert.True(t, errors.Is(err, ErrHistoryOrder))
	assert.Equal(t, 3, h.Len())

	got := h.Range(start.Add(time.Hour), start.Add(2*time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, start.Add(time.Hour), got[0].PeriodStart)

	var empty *AllocationHistory
	_, ok = empty.Latest()
	assert.False(t, ok)
	assert.Zero(t, empty.Len())
}

func TestOutputWireShape(t *testing.T) {
	out := BudgetAllocationOutput{
		LastModifiedDate:       start.Add(1500 * time.Microsecond),
		AnticipatedSpendForDay: decimal.RequireFromString("120.50"),
		Results: []PerNodeResult{{
			AllocationID:        "id-1",
			MeasureSet:          MeasureSet{1, 4},
			PeriodImpressionCap: 2000,
			PeriodMediaBudget:   decimal.RequireFromString("60.25"),
			PeriodTotalBudget:   decimal.RequireFromString("70.88"),
			MaxBid:              decimal.RequireFromString("2.75"),
		}},
	}
	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"lastModifiedDate": "2025-03-01T00:00:00.001500Z",
		"anticipatedSpendForDay": "120.5",
		"results": [{
			"allocationId": "id-1",
			"measureSet": [1, 4],
			"periodImpressionCap": 2000,
			"periodMediaBudget": "60.25",
			"periodTotalBudget": "70.88",
			"maxBid": "2.75"
		}]
	}`, string(b))

	var back BudgetAllocationOutput
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.LastModifiedDate.Equal(out.LastModifiedDate))
	assert.True(t, back.Results[0].PeriodMediaBudget.Equal(out.Results[0].PeriodMediaBudget))
}

func TestEmptyOutputHasResultsArray(t *testing.T) {
	b, err := json.Marshal(BudgetAllocationOutput{LastModifiedDate: start, AnticipatedSpendForDay: decimal.Zero})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastModifiedDate":"2025-03-01T00:00:00.000000Z","anticipatedSpendForDay":"0","results":[]}`, string(b))
}

func TestInputsWireShape(t *testing.T) {
	raw := `{
		"campaignId": 12,
		"totalBudget": "1000",
		"remainingBudget": "800.50",
		"startTime": "2025-03-01T00:00:00.000000Z",
		"endTime": "2025-03-11T00:00:00Z",
		"periodStart": "2025-03-02T00:00:00.000000+00:00",
		"periodDuration": "1.00:00:00",
		"reallocationStartTime": "2025-03-02T00:00:00Z",
		"perMilleFees": "0.1",
		"margin": "0.85",
		"historicalMeasureVolumes": [{"measureId": 3, "volume": -1}],
		"nodes": [{"allocationId": "x", "measureSet": [3], "valuation": "2", "estimatedCostPerMille": "1.5",
			"periodSpend": "0", "periodImpressions": 0, "lifetimeSpend": "10", "lifetimeImpressions": 4000}]
	}`
	var in BudgetAllocationInputs
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	assert.Equal(t, int64(12), in.CampaignID)
	assert.True(t, in.PeriodStart.Equal(start.Add(24*time.Hour)))
	assert.Equal(t, 24*time.Hour, in.PeriodDuration.Std())
	assert.True(t, in.PeriodEnd().Equal(start.Add(48*time.Hour)))
	assert.False(t, in.HistoricalMeasureVolumes[0].Known())
	require.Len(t, in.Nodes, 1)
	assert.Equal(t, int64(4000), in.Nodes[0].Node().LifetimeImpressions)

	b, err := json.Marshal(in)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "2025-03-11T00:00:00.000000Z", m["endTime"])
	assert.Equal(t, "1.00:00:00", m["periodDuration"])
}

func TestRecordJSON(t *testing.T) {
	rec := AllocationRecord{
		CampaignID:            3,
		Version:               7,
		Mode:                  ModeInitialAllocation,
		PeriodStart:           start,
		ReallocationStartTime: start.Add(4 * time.Hour),
	}
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"output"`)

	var back AllocationRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, rec.Version, back.Version)
	assert.True(t, back.ReallocationStartTime.Equal(rec.ReallocationStartTime))
	assert.Nil(t, back.Output)
}
