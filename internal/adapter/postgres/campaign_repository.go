package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mesa-alloc/internal/core/domain"
)

// CampaignRepository implements port.CampaignRepository on the campaign
// tables. It only reads.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// GetCampaign returns a campaign by id.
func (r *CampaignRepository) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `
        SELECT id, name, start_date, end_date, total_budget, remaining_budget, status, created_at, updated_at
        FROM campaigns
        WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.TotalBudget, &c.RemainingBudget, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", domain.ErrCampaignNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	return &c, nil
}

// ListNodes returns the node catalog of a campaign ordered by id.
func (r *CampaignRepository) ListNodes(ctx context.Context, campaignID int64) ([]domain.AllocationNode, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT
            id,
            measure_set,
            valuation,
            estimated_cpm,
            lifetime_impressions,
            lifetime_spend,
            COALESCE(parent_id, ''),
            lineage_neutral
        FROM allocation_nodes
        WHERE campaign_id = $1
        ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AllocationNode, error) {
		var (
			n        domain.AllocationNode
			measures []int64
		)
		err := row.Scan(
			&n.AllocationID,
			&measures,
			&n.Valuation,
			&n.EstimatedCostPerMille,
			&n.LifetimeImpressions,
			&n.LifetimeSpend,
			&n.ParentID,
			&n.LineageNeutral,
		)
		n.MeasureSet = domain.NewMeasureSet(measures...)
		return n, err
	})
}

// GetDelivery sums delivery per node in [from, to).
func (r *CampaignRepository) GetDelivery(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.NodeDelivery, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT allocation_id, COALESCE(sum(impressions), 0)::bigint, COALESCE(sum(spend), 0)
        FROM node_delivery
        WHERE campaign_id = $1 AND delivered_at >= $2 AND delivered_at < $3
        GROUP BY allocation_id
        ORDER BY allocation_id`, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.NodeDelivery, error) {
		var d domain.NodeDelivery
		err := row.Scan(&d.AllocationID, &d.Impressions, &d.Spend)
		return d, err
	})
}

// ListActiveCampaigns returns the ids of active campaigns running at now.
func (r *CampaignRepository) ListActiveCampaigns(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id
        FROM campaigns
        WHERE status = $1 AND start_date <= $2 AND end_date > $2
        ORDER BY id`, domain.CampaignActive, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// Lookup implements port.MeasureSource on the measure catalog table.
func (r *CampaignRepository) Lookup(ctx context.Context, ids []int64) ([]domain.Measure, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, category, estimated_volume
        FROM measure_catalog
        WHERE id = ANY($1)
        ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Measure, error) {
		var m domain.Measure
		err := row.Scan(&m.ID, &m.Name, &m.Category, &m.EstimatedVolume)
		return m, err
	})
}
