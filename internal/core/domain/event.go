package domain

import (
	"github.com/shopspring/decimal"
)

// NodeDelivery aggregates delivery counters of one allocation node over a
// time window, typically the period that just finished.
type NodeDelivery struct {
	AllocationID string
	Impressions  int64
	Spend        decimal.Decimal
}
