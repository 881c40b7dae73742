// Package catalog holds MeasureSource variants that are not backed by the
// campaign database: a static in-memory catalog and a YAML file that is
// reloaded on change.
package catalog

import (
	"context"
	"sync/atomic"

	"mesa-alloc/internal/core/domain"
)

// Memory is an in-memory MeasureSource. Readers always see a complete
// snapshot; Replace swaps the snapshot as a whole.
type Memory struct {
	snapshot atomic.Pointer[map[int64]domain.Measure]
}

// NewMemory returns a catalog holding measures.
func NewMemory(measures ...domain.Measure) *Memory {
	m := &Memory{}
	m.Replace(measures)
	return m
}

// Replace swaps the catalog content.
func (m *Memory) Replace(measures []domain.Measure) {
	next := make(map[int64]domain.Measure, len(measures))
	for _, ms := range measures {
		next[ms.ID] = ms
	}
	m.snapshot.Store(&next)
}

// Len returns the number of measures.
func (m *Memory) Len() int {
	return len(*m.snapshot.Load())
}

// Lookup returns the known measures among ids in request order.
func (m *Memory) Lookup(_ context.Context, ids []int64) ([]domain.Measure, error) {
	snap := *m.snapshot.Load()
	out := make([]domain.Measure, 0, len(ids))
	for _, id := range ids {
		if ms, ok := snap[id]; ok {
			out = append(out, ms)
		}
	}
	return out, nil
}
