package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/domain"
)

var demoMeasures = []domain.Measure{
	{ID: 101, Name: "sports fans", Category: "interest", EstimatedVolume: 180000},
	{ID: 102, Name: "tech enthusiasts", Category: "interest", EstimatedVolume: 95000},
	{ID: 103, Name: "music lovers", Category: "interest", EstimatedVolume: 240000},
	{ID: 104, Name: "commuters", Category: "behaviour", EstimatedVolume: 60000},
	{ID: 105, Name: "gamers", Category: "interest", EstimatedVolume: 120000},
	{ID: 201, Name: "yerevan", Category: "geo", EstimatedVolume: 45000},
	{ID: 202, Name: "moscow", Category: "geo", EstimatedVolume: 310000},
	{ID: 203, Name: "retired segment", Category: "geo", EstimatedVolume: 0},
}

// Seed inserts demo campaigns with node catalogs and some delivery into
// the mesa-alloc database.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, m := range demoMeasures {
		_, err := db.Exec(ctx, `INSERT INTO measure_catalog (id, name, category, estimated_volume)
VALUES ($1,$2,$3,$4) ON CONFLICT (id) DO UPDATE SET estimated_volume = EXCLUDED.estimated_volume`,
			m.ID, m.Name, m.Category, m.EstimatedVolume)
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC().Truncate(time.Hour)
	for i := int64(1); i <= 5; i++ {
		name := fmt.Sprintf("Campaign %d", i)
		start := now.AddDate(0, 0, -int(i))
		end := now.AddDate(0, 0, 30)
		total := decimal.NewFromInt(5000 * i)
		remaining := total.Mul(decimal.RequireFromString("0.9"))
		_, err := db.Exec(ctx, `INSERT INTO campaigns
    (id, name, start_date, end_date, total_budget, remaining_budget, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now()) ON CONFLICT DO NOTHING`,
			i, name, start, end, total, remaining, domain.CampaignActive)
		if err != nil {
			return err
		}

		var parent string
		for j := 0; j < 12; j++ {
			a := demoMeasures[r.Intn(5)].ID
			g := demoMeasures[5+r.Intn(3)].ID
			node := domain.NewAllocationNode(
				decimal.NewFromFloat(float64(r.Intn(9000)+1000)/100),
				decimal.NewFromFloat(1.5+float64(r.Intn(300))/100).Round(2),
				a, g,
			)
			// every fourth node refines the previous one
			if j%4 == 3 {
				node.ParentID = parent
				node.LineageNeutral = j%8 == 7
			}
			tag, err := db.Exec(ctx, `INSERT INTO allocation_nodes
(campaign_id, id, measure_set, valuation, estimated_cpm, parent_id, lineage_neutral)
VALUES ($1,$2,$3,$4,$5,NULLIF($6, ''),$7) ON CONFLICT DO NOTHING`,
				i, node.AllocationID, []int64(node.MeasureSet), node.Valuation, node.EstimatedCostPerMille,
				node.ParentID, node.LineageNeutral)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				continue
			}
			parent = node.AllocationID

			for k := 0; k < 24; k++ {
				impressions := int64(r.Intn(2000))
				spend := node.EstimatedCostPerMille.Mul(decimal.NewFromInt(impressions)).Div(decimal.NewFromInt(1000)).Round(6)
				_, err = db.Exec(ctx, `INSERT INTO node_delivery
(campaign_id, allocation_id, impressions, spend, delivered_at)
VALUES ($1,$2,$3,$4,$5)`,
					i, node.AllocationID, impressions, spend, now.Add(-time.Duration(k)*time.Hour))
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
