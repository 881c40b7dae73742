// Package natskv contains the NATS adapters: a JetStream key-value
// allocation store, the pass request dispatcher and the result publisher.
package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"mesa-alloc/internal/core/domain"
)

// Store implements port.AllocationStore on a JetStream KV bucket. The
// record of a campaign lives under record.<campaignId> and its KV revision
// is the record version. History entries live under
// history.<campaignId>.<periodStartMicros>.
//
// The record value carries the history entry of its own pass, so the
// compare-and-set on the record commits both. The history key is a copy
// written after the commit; a missing copy is restored by the next Put
// and merged in on read.
type Store struct {
	kv jetstream.KeyValue
}

// storedRecord is the value under record.<campaignId>.
type storedRecord struct {
	Record domain.AllocationRecord `json:"record"`
	Entry  *domain.HistoryEntry    `json:"entry,omitempty"`
}

// NewStore opens the bucket, creating it on first use.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "campaign allocation records and history",
		History:     1,
	})
	if errors.Is(err, jetstream.ErrBucketExists) {
		kv, err = js.KeyValue(ctx, bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("open allocation bucket %s: %w", bucket, err)
	}
	return &Store{kv: kv}, nil
}

func recordKey(campaignID int64) string {
	return "record." + strconv.FormatInt(campaignID, 10)
}

func historyKey(campaignID int64, periodStart time.Time) string {
	return fmt.Sprintf("history.%d.%020d", campaignID, periodStart.UnixMicro())
}

// Get returns the current record or nil.
func (s *Store) Get(ctx context.Context, campaignID int64) (*domain.AllocationRecord, error) {
	stored, revision, err := s.load(ctx, campaignID)
	if err != nil || stored == nil {
		return nil, err
	}
	rec := stored.Record
	rec.Version = int64(revision)
	return &rec, nil
}

func (s *Store) load(ctx context.Context, campaignID int64) (*storedRecord, uint64, error) {
	entry, err := s.kv.Get(ctx, recordKey(campaignID))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	var stored storedRecord
	if err = json.Unmarshal(entry.Value(), &stored); err != nil {
		return nil, 0, fmt.Errorf("decode allocation record of campaign %d: %w", campaignID, err)
	}
	return &stored, entry.Revision(), nil
}

// Put writes rec together with entry when the stored revision is still
// expectedVersion. Once the record is written the pass is committed; a
// failure to copy entry to its history key is not reported.
func (s *Store) Put(ctx context.Context, rec domain.AllocationRecord, entry domain.HistoryEntry, expectedVersion int64) (domain.AllocationRecord, error) {
	if expectedVersion > 0 {
		// restore the history copy of the pass being replaced
		prev, revision, err := s.load(ctx, rec.CampaignID)
		if err != nil {
			return domain.AllocationRecord{}, err
		}
		if prev == nil || revision != uint64(expectedVersion) {
			return domain.AllocationRecord{}, fmt.Errorf("%w: campaign %d is no longer at version %d",
				domain.ErrPersistConflict, rec.CampaignID, expectedVersion)
		}
		if prev.Entry != nil {
			if err = s.putHistory(ctx, rec.CampaignID, *prev.Entry); err != nil {
				return domain.AllocationRecord{}, err
			}
		}
	}

	rec.Version = 0
	value, err := json.Marshal(storedRecord{Record: rec, Entry: &entry})
	if err != nil {
		return domain.AllocationRecord{}, err
	}

	key := recordKey(rec.CampaignID)
	var revision uint64
	if expectedVersion == 0 {
		revision, err = s.kv.Create(ctx, key, value)
	} else {
		revision, err = s.kv.Update(ctx, key, value, uint64(expectedVersion))
	}
	if isRevisionConflict(err) {
		return domain.AllocationRecord{}, fmt.Errorf("%w: campaign %d is no longer at version %d",
			domain.ErrPersistConflict, rec.CampaignID, expectedVersion)
	}
	if err != nil {
		return domain.AllocationRecord{}, err
	}

	// committed; a lost copy is restored later
	_ = s.putHistory(ctx, rec.CampaignID, entry)

	rec.Version = int64(revision)
	return rec, nil
}

func (s *Store) putHistory(ctx context.Context, campaignID int64, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err = s.kv.Put(ctx, historyKey(campaignID, entry.PeriodStart), data); err != nil {
		return fmt.Errorf("copy history of campaign %d: %w", campaignID, err)
	}
	return nil
}

// History returns entries with period start in [from, to), oldest first.
func (s *Store) History(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.HistoryEntry, error) {
	all, err := s.entries(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoryEntry, 0, len(all))
	for _, e := range all {
		if !e.PeriodStart.Before(from) && e.PeriodStart.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// LatestEntry returns the entry committed with the current record, or nil.
func (s *Store) LatestEntry(ctx context.Context, campaignID int64) (*domain.HistoryEntry, error) {
	stored, _, err := s.load(ctx, campaignID)
	if err != nil || stored == nil {
		return nil, err
	}
	return stored.Entry, nil
}

// entries returns the history copies merged with the entry of the current
// record, oldest first.
func (s *Store) entries(ctx context.Context, campaignID int64) ([]domain.HistoryEntry, error) {
	out, err := s.historyCopies(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	stored, _, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.Entry != nil && !slices.ContainsFunc(out, func(e domain.HistoryEntry) bool {
		return e.PeriodStart.Equal(stored.Entry.PeriodStart)
	}) {
		out = append(out, *stored.Entry)
	}
	slices.SortFunc(out, func(a, b domain.HistoryEntry) int {
		return a.PeriodStart.Compare(b.PeriodStart)
	})
	return out, nil
}

// historyCopies reads every history key of a campaign through a wildcard
// watcher, which delivers the current values followed by a nil marker.
func (s *Store) historyCopies(ctx context.Context, campaignID int64) ([]domain.HistoryEntry, error) {
	w, err := s.kv.Watch(ctx, fmt.Sprintf("history.%d.*", campaignID), jetstream.IgnoreDeletes())
	if err != nil {
		return nil, err
	}
	defer func() { _ = w.Stop() }()

	var out []domain.HistoryEntry
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case kve, ok := <-w.Updates():
			if !ok {
				return nil, errors.New("history watcher closed")
			}
			if kve == nil {
				return out, nil
			}
			var e domain.HistoryEntry
			if err := json.Unmarshal(kve.Value(), &e); err != nil {
				return nil, fmt.Errorf("decode history %s: %w", kve.Key(), err)
			}
			out = append(out, e)
		}
	}
}

func isRevisionConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}
