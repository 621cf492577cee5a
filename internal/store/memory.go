package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
)

// MemoryStore is a concurrency-safe in-memory persistence gateway.
// Records are append-only: nothing updates or deletes them, and records
// from multiple sources for the same location and date coexist.
type MemoryStore struct {
	mu      sync.RWMutex
	records []astro.Record
	clock   clockwork.Clock
}

// NewMemoryStore creates an empty store. Pass nil to use the real
// clock; tests inject a fake for deterministic created_at stamps.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock}
}

// Append stores one record, assigning its created_at timestamp.
func (s *MemoryStore) Append(_ context.Context, rec astro.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ReadAll returns the filtered record set ordered by created_at
// descending; within equal timestamps, insertion order is preserved.
func (s *MemoryStore) ReadAll(_ context.Context, f astro.Filter) ([]astro.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]astro.Record, 0, len(s.records))
	for _, rec := range s.records {
		if f.Matches(rec) {
			result = append(result, rec)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
