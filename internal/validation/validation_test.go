package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesa-alloc/internal/core/domain"
)

func TestValidate(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		schema  string
		payload string
		valid   bool
	}{
		{"pass request", PassRequest, `{"campaignId": 7}`, true},
		{"pass request with period", PassRequest, `{"campaignId": 7, "periodStart": "2025-03-01T04:00:00.000000Z"}`, true},
		{"pass request without campaign", PassRequest, `{}`, false},
		{"pass request negative campaign", PassRequest, `{"campaignId": -1}`, false},
		{"pass request fractional campaign", PassRequest, `{"campaignId": 1.5}`, false},
		{"pass request bad time", PassRequest, `{"campaignId": 7, "periodStart": "yesterday"}`, false},
		{"pass request unknown field", PassRequest, `{"campaignId": 7, "force": true}`, false},
		{"empty trigger", PassTrigger, `{}`, true},
		{"trigger with period", PassTrigger, `{"periodStart": "2025-03-01T04:00:00Z"}`, true},
		{"malformed", PassTrigger, `{`, false},
		{"simulate", SimulateRequest, `{
			"mode": "steady",
			"params": {"margin": "0.8", "periodDuration": "1.00:00:00"},
			"inputs": {
				"totalBudget": "1000",
				"remainingBudget": 900.5,
				"startTime": "2025-03-01T00:00:00Z",
				"endTime": "2025-03-31T00:00:00Z",
				"periodStart": "2025-03-05T00:00:00Z",
				"periodDuration": "1.00:00:00",
				"historicalMeasureVolumes": [{"measureId": 1, "volume": -1}],
				"nodes": [{"measureSet": [1, 2], "valuation": "12.5", "estimatedCostPerMille": "2.10"}]
			}
		}`, true},
		{"simulate unknown mode", SimulateRequest, `{"mode": "burst", "inputs": {}}`, false},
		{"simulate missing inputs", SimulateRequest, `{"mode": "initial"}`, false},
		{"simulate negative budget", SimulateRequest, `{"inputs": {
			"totalBudget": "-5", "remainingBudget": "0",
			"startTime": "2025-03-01T00:00:00Z", "endTime": "2025-03-31T00:00:00Z",
			"periodStart": "2025-03-01T00:00:00Z", "periodDuration": "04:00:00", "nodes": []
		}}`, false},
		{"simulate go duration", SimulateRequest, `{"inputs": {
			"totalBudget": "5", "remainingBudget": "0",
			"startTime": "2025-03-01T00:00:00Z", "endTime": "2025-03-31T00:00:00Z",
			"periodStart": "2025-03-01T00:00:00Z", "periodDuration": "4h", "nodes": []
		}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.schema, []byte(tt.payload))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidParameters)
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	assert.Error(t, v.Validate("nope.json", []byte(`{}`)))
}
