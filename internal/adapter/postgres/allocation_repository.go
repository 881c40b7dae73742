package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mesa-alloc/internal/core/domain"
)

const uniqueViolation = "23505"

// AllocationRepository implements port.AllocationStore. The allocations
// row carries a version column; every write is a compare-and-set on it and
// appends the history row in the same transaction.
type AllocationRepository struct {
	pool *pgxpool.Pool
}

// NewAllocationRepository returns a new repository instance.
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool}
}

// Get returns the current record or nil when the campaign has none.
func (r *AllocationRepository) Get(ctx context.Context, campaignID int64) (*domain.AllocationRecord, error) {
	var (
		rec    domain.AllocationRecord
		mode   string
		output []byte
	)
	err := r.pool.QueryRow(ctx, `
        SELECT campaign_id, version, mode, period_start, reallocation_start_time, output
        FROM allocations
        WHERE campaign_id = $1`, campaignID).
		Scan(&rec.CampaignID, &rec.Version, &mode, &rec.PeriodStart, &rec.ReallocationStartTime, &output)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Mode = domain.Mode(mode)
	rec.PeriodStart = rec.PeriodStart.UTC()
	rec.ReallocationStartTime = rec.ReallocationStartTime.UTC()

	var out domain.BudgetAllocationOutput
	if err = json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("decode allocation output of campaign %d: %w", campaignID, err)
	}
	rec.Output = &out
	return &rec, nil
}

// Put stores rec as version expectedVersion+1 and appends entry to the
// history. It returns domain.ErrPersistConflict when the stored version is
// not expectedVersion or the period was already recorded.
func (r *AllocationRepository) Put(ctx context.Context, rec domain.AllocationRecord, entry domain.HistoryEntry, expectedVersion int64) (saved domain.AllocationRecord, err error) {
	output, err := json.Marshal(rec.Output)
	if err != nil {
		return saved, err
	}
	entryInputs, err := json.Marshal(entry.Inputs)
	if err != nil {
		return saved, err
	}
	entryOutput, err := json.Marshal(entry.Output)
	if err != nil {
		return saved, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return saved, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	var tag pgconn.CommandTag
	if expectedVersion == 0 {
		tag, err = tx.Exec(ctx, `
            INSERT INTO allocations (campaign_id, version, mode, period_start, reallocation_start_time, output, updated_at)
            VALUES ($1, 1, $2, $3, $4, $5, now())
            ON CONFLICT (campaign_id) DO NOTHING`,
			rec.CampaignID, string(rec.Mode), rec.PeriodStart, rec.ReallocationStartTime, output)
	} else {
		tag, err = tx.Exec(ctx, `
            UPDATE allocations
            SET version = version + 1, mode = $3, period_start = $4, reallocation_start_time = $5, output = $6, updated_at = now()
            WHERE campaign_id = $1 AND version = $2`,
			rec.CampaignID, expectedVersion, string(rec.Mode), rec.PeriodStart, rec.ReallocationStartTime, output)
	}
	if err != nil {
		return saved, err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("%w: campaign %d is no longer at version %d", domain.ErrPersistConflict, rec.CampaignID, expectedVersion)
		return saved, err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO allocation_history (campaign_id, period_start, mode, inputs, output, created_at)
        VALUES ($1, $2, $3, $4, $5, now())`,
		rec.CampaignID, entry.PeriodStart, string(entry.Mode), entryInputs, entryOutput)
	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: period %s of campaign %d already recorded",
			domain.ErrPersistConflict, entry.PeriodStart.Format(time.RFC3339), rec.CampaignID)
	}
	if err != nil {
		return saved, err
	}

	saved = rec
	saved.Version = expectedVersion + 1
	return saved, nil
}

// History returns entries with period start in [from, to) in ascending
// order.
func (r *AllocationRepository) History(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT period_start, mode, inputs, output
        FROM allocation_history
        WHERE campaign_id = $1 AND period_start >= $2 AND period_start < $3
        ORDER BY period_start`, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanHistoryEntry)
}

// LatestEntry returns the most recent history entry or nil.
func (r *AllocationRepository) LatestEntry(ctx context.Context, campaignID int64) (*domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT period_start, mode, inputs, output
        FROM allocation_history
        WHERE campaign_id = $1
        ORDER BY period_start DESC
        LIMIT 1`, campaignID)
	if err != nil {
		return nil, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanHistoryEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanHistoryEntry(row pgx.CollectableRow) (domain.HistoryEntry, error) {
	var (
		e              domain.HistoryEntry
		mode           string
		inputs, output []byte
	)
	if err := row.Scan(&e.PeriodStart, &mode, &inputs, &output); err != nil {
		return e, err
	}
	e.PeriodStart = e.PeriodStart.UTC()
	e.Mode = domain.Mode(mode)
	if err := json.Unmarshal(inputs, &e.Inputs); err != nil {
		return e, fmt.Errorf("decode history inputs: %w", err)
	}
	if err := json.Unmarshal(output, &e.Output); err != nil {
		return e, fmt.Errorf("decode history output: %w", err)
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
