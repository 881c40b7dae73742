package port

import (
	"context"
	"time"

	"mesa-alloc/internal/core/domain"
)

// CampaignRepository is the read side of the campaign/entity store. The
// allocation engine never writes back to it.
type CampaignRepository interface {
	// GetCampaign returns a campaign by id or domain.ErrCampaignNotFound.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	// ListNodes returns the campaign's current node catalog with
	// valuations and cost estimates.
	ListNodes(ctx context.Context, campaignID int64) ([]domain.AllocationNode, error)
	// GetDelivery aggregates node delivery in [from, to).
	GetDelivery(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.NodeDelivery, error)
	// ListActiveCampaigns returns the ids of campaigns running at now.
	ListActiveCampaigns(ctx context.Context, now time.Time) ([]int64, error)
}

// MeasureSource resolves measure metadata and volume estimates. Variants
// differ per delivery network and are selected by configuration.
type MeasureSource interface {
	// Lookup returns the known measures among ids. Unknown ids are
	// omitted rather than reported as errors.
	Lookup(ctx context.Context, ids []int64) ([]domain.Measure, error)
}

// ResultPublisher hands a committed allocation to the delivery
// collaborator.
type ResultPublisher interface {
	Publish(ctx context.Context, campaignID int64, out domain.BudgetAllocationOutput) error
}
