package port

import (
	"context"
	"time"

	"mesa-alloc/internal/core/domain"
)

// AllocationStore persists the versioned allocation record of each campaign
// together with its append-only history. It is an outbound port;
// implementations must be safe for concurrent use.
type AllocationStore interface {
	// Get returns the current record of a campaign, or nil when no pass
	// has been committed yet.
	Get(ctx context.Context, campaignID int64) (*domain.AllocationRecord, error)

	// Put stores rec and appends entry to the history in one atomic step.
	// expectedVersion is the version read before the pass, 0 for a
	// campaign without record. When the stored version differs the call
	// fails with domain.ErrPersistConflict and nothing is written. The
	// returned record carries the new version.
	Put(ctx context.Context, rec domain.AllocationRecord, entry domain.HistoryEntry, expectedVersion int64) (domain.AllocationRecord, error)

	// History returns the entries whose period start lies in [from, to),
	// oldest first.
	History(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.HistoryEntry, error)

	// LatestEntry returns the most recent history entry, or nil.
	LatestEntry(ctx context.Context, campaignID int64) (*domain.HistoryEntry, error)
}
