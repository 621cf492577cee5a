package store

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func record(id, loc, source, date string) astro.Record {
	return astro.Record{
		ID:               id,
		Location:         loc,
		Date:             day(date),
		Source:           source,
		DayLengthSeconds: 50000,
	}
}

func TestMemoryStoreAssignsCreatedAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	s := NewMemoryStore(clock)

	require.NoError(t, s.Append(context.Background(), record("r1", "Oslo", "a", "2024-06-01")))

	records, err := s.ReadAll(context.Background(), astro.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, now, records[0].CreatedAt)
}

func TestMemoryStoreOrdersByCreatedAtDescending(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s := NewMemoryStore(clock)

	require.NoError(t, s.Append(context.Background(), record("old", "Oslo", "a", "2024-06-01")))
	clock.Advance(time.Minute)
	require.NoError(t, s.Append(context.Background(), record("new", "Oslo", "a", "2024-06-02")))

	records, err := s.ReadAll(context.Background(), astro.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "old", records[1].ID)
}

func TestMemoryStoreSiblingSourcesCoexist(t *testing.T) {
	s := NewMemoryStore(nil)

	// Same location and date from two sources: both kept, no dedup.
	require.NoError(t, s.Append(context.Background(), record("r1", "Oslo", "api.sunrise-sunset.org", "2024-06-01")))
	require.NoError(t, s.Append(context.Background(), record("r2", "Oslo", "api.sunrisesunset.io", "2024-06-01")))

	records, err := s.ReadAll(context.Background(), astro.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMemoryStoreLocationSubstringFilter(t *testing.T) {
	s := NewMemoryStore(nil)
	require.NoError(t, s.Append(context.Background(), record("r1", "Oslo", "a", "2024-06-01")))
	require.NoError(t, s.Append(context.Background(), record("r2", "New York", "a", "2024-06-01")))

	records, err := s.ReadAll(context.Background(), astro.Filter{Location: "york"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "New York", records[0].Location)

	records, err = s.ReadAll(context.Background(), astro.Filter{Location: "berlin"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStoreDateRangeFilter(t *testing.T) {
	s := NewMemoryStore(nil)
	require.NoError(t, s.Append(context.Background(), record("r1", "Oslo", "a", "2024-06-01")))
	require.NoError(t, s.Append(context.Background(), record("r2", "Oslo", "a", "2024-06-15")))
	require.NoError(t, s.Append(context.Background(), record("r3", "Oslo", "a", "2024-07-01")))

	records, err := s.ReadAll(context.Background(), astro.Filter{
		From: day("2024-06-10"),
		To:   day("2024-06-30"),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r2", records[0].ID)

	// Bounds are inclusive.
	records, err = s.ReadAll(context.Background(), astro.Filter{
		From: day("2024-06-01"),
		To:   day("2024-07-01"),
	})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
