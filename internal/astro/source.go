package astro

import (
	"context"
	"time"
)

// Observation is a single source's normalized result for one
// coordinate/date, before it is tagged and persisted as a Record.
// All timestamps are absolute instants regardless of how the source
// encoded them on the wire.
type Observation struct {
	Sunrise          time.Time
	Sunset           time.Time
	SolarNoon        time.Time
	DayLengthSeconds int
}

// SourceAdapter abstracts one astronomical data provider. Each adapter
// owns its provider's quirks (time encodings, offset arithmetic,
// success markers) and returns either a normalized observation or an
// error local to that provider.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates, date time.Time) (Observation, error)
}

// Geocoder resolves a free-text place name to coordinates.
// An unresolvable place is an error, never a default location.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (Coordinates, error)
}

// Store is the persistence gateway contract: an append-only record
// sink queried by simple predicates. Appends are independent per
// record; there is no upsert and no cross-record transactionality.
type Store interface {
	Append(ctx context.Context, rec Record) error

	// ReadAll returns the filtered record set ordered by CreatedAt
	// descending.
	ReadAll(ctx context.Context, f Filter) ([]Record, error)
}
