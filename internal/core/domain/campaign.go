package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign status values stored by the campaign/entity store.
const (
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// Campaign represents an advertising campaign as supplied by the
// campaign/entity store. Budgets are fixed-precision currency amounts.
// The allocation engine only reads campaigns; it never writes back.
type Campaign struct {
	ID              int64
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	TotalBudget     decimal.Decimal
	RemainingBudget decimal.Decimal
	Status          string // active, paused, completed
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Ended reports whether t is at or past the campaign end.
func (c Campaign) Ended(t time.Time) bool {
	return !t.Before(c.EndDate)
}
