package astro

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DannySS123/weather-pulse-explorer/internal/observability"
)

var (
	// ErrNoSources is returned when the service has no adapters configured.
	ErrNoSources = errors.New("no astronomical data sources configured")

	// ErrAllSourcesFailed is returned when every adapter failed for a date.
	ErrAllSourcesFailed = errors.New("all astronomical data sources failed")
)

// DefaultMaxRangeDates bounds how many dates one range acquisition may
// fan out for, so a single request cannot hammer rate-limited third
// parties indefinitely.
const DefaultMaxRangeDates = 30

// ProgressFunc reports cumulative range-acquisition progress after each
// date's fan-out (including its persistence writes) settles.
type ProgressFunc func(completed, total int)

// RangeReport summarizes a multi-date acquisition.
type RangeReport struct {
	Location       string   `json:"location"`
	RequestedDates int      `json:"requestedDates"`
	ProcessedDates int      `json:"processedDates"`
	SucceededDates int      `json:"succeededDates"`
	StoredRecords  int      `json:"storedRecords"`
	FailedDates    []string `json:"failedDates,omitempty"`
}

// Service coordinates geocoding, concurrent source fan-out, validation,
// and persistence, and serves derived statistics from the store.
type Service struct {
	store    Store
	geocoder Geocoder
	sources  []SourceAdapter
	metrics  *observability.Metrics
	maxDates int
}

// NewService creates a Service. maxRangeDates caps dates per range
// acquisition; pass 0 for the default. metrics may be nil.
func NewService(store Store, geocoder Geocoder, sources []SourceAdapter, metrics *observability.Metrics, maxRangeDates int) *Service {
	if maxRangeDates <= 0 {
		maxRangeDates = DefaultMaxRangeDates
	}
	return &Service{
		store:    store,
		geocoder: geocoder,
		sources:  sources,
		metrics:  metrics,
		maxDates: maxRangeDates,
	}
}

// AcquireDate fans out one request per configured source concurrently
// for the given coordinates and calendar date, waits for all of them to
// settle, and returns the validated records from the sources that
// succeeded. Individual source failures are logged and contained; only
// the case where every source failed is an error.
func (s *Service) AcquireDate(ctx context.Context, location string, coords Coordinates, date time.Time) ([]Record, error) {
	if len(s.sources) == 0 {
		return nil, ErrNoSources
	}

	date = DateOnly(date)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []Record
	)

	for _, src := range s.sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()

			obs, err := src.Fetch(ctx, coords, date)
			if err != nil {
				// Log and continue; partial success is success.
				log.Printf("source %s fetch failed for %s on %s: %v",
					src.Name(), location, date.Format("2006-01-02"), err)
				s.metrics.ObserveFetch(src.Name(), false)
				return
			}
			s.metrics.ObserveFetch(src.Name(), true)

			if err := validateObservation(obs); err != nil {
				// A malformed pair is the source's own parsing bug;
				// treat it as that source's failure, never persist it.
				log.Printf("source %s returned malformed observation for %s on %s: %v",
					src.Name(), location, date.Format("2006-01-02"), err)
				s.metrics.ObserveRejected(src.Name())
				return
			}

			rec := Record{
				ID:               uuid.NewString(),
				Location:         location,
				Latitude:         coords.Lat,
				Longitude:        coords.Lng,
				Date:             date,
				Sunrise:          obs.Sunrise,
				Sunset:           obs.Sunset,
				SolarNoon:        obs.SolarNoon,
				DayLengthSeconds: obs.DayLengthSeconds,
				Source:           src.Name(),
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(records) == 0 {
		return nil, fmt.Errorf("%w for %s on %s", ErrAllSourcesFailed, location, date.Format("2006-01-02"))
	}
	return records, nil
}

// AcquireRange geocodes the place, then acquires and persists records
// for each date in [from, to] sequentially: one date's fan-out and
// writes finish before the next date begins. A date where every source
// fails is reported and skipped, not fatal. Only geocoding failure
// aborts before any source is contacted.
func (s *Service) AcquireRange(ctx context.Context, place string, from, to time.Time, progress ProgressFunc) (RangeReport, error) {
	report := RangeReport{Location: place}

	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return report, fmt.Errorf("invalid date range: %s is after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	coords, err := s.geocoder.Resolve(ctx, place)
	if err != nil {
		s.metrics.ObserveGeocode(false)
		return report, fmt.Errorf("geocoding %q: %w", place, err)
	}
	s.metrics.ObserveGeocode(true)

	dates := make([]time.Time, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	report.RequestedDates = len(dates)

	if len(dates) > s.maxDates {
		log.Printf("range for %s truncated from %d to %d dates", place, len(dates), s.maxDates)
		dates = dates[:s.maxDates]
	}
	report.ProcessedDates = len(dates)

	for i, date := range dates {
		records, err := s.AcquireDate(ctx, place, coords, date)
		if err != nil {
			log.Printf("acquisition failed for %s on %s: %v", place, date.Format("2006-01-02"), err)
			report.FailedDates = append(report.FailedDates, date.Format("2006-01-02"))
		} else {
			report.SucceededDates++
			for _, rec := range records {
				// Appends are independent: one source's record failing
				// to store must not block its siblings.
				if err := s.store.Append(ctx, rec); err != nil {
					log.Printf("failed to store %s record for %s on %s: %v",
						rec.Source, place, date.Format("2006-01-02"), err)
					s.metrics.ObserveStoreFailure()
					continue
				}
				s.metrics.ObserveStored()
				report.StoredRecords++
			}
		}

		if progress != nil {
			progress(i+1, len(dates))
		}
	}

	return report, nil
}

// Records returns the filtered record set from the store.
func (s *Service) Records(ctx context.Context, f Filter) ([]Record, error) {
	return s.store.ReadAll(ctx, f)
}

// Statistics reads the filtered record set and recomputes every derived
// statistic over it. The filter applies identically to all statistics.
func (s *Service) Statistics(ctx context.Context, f Filter) (Statistics, error) {
	records, err := s.store.ReadAll(ctx, f)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(records), nil
}

// validateObservation enforces the record invariants: sunrise strictly
// before sunset, and the reported day length consistent with the
// normalized pair within one second.
func validateObservation(obs Observation) error {
	if !obs.Sunrise.Before(obs.Sunset) {
		return fmt.Errorf("sunrise %s is not before sunset %s", obs.Sunrise, obs.Sunset)
	}

	elapsed := int(obs.Sunset.Sub(obs.Sunrise).Round(time.Second) / time.Second)
	diff := obs.DayLengthSeconds - elapsed
	if diff < -1 || diff > 1 {
		return fmt.Errorf("day length %ds disagrees with sunset-sunrise %ds", obs.DayLengthSeconds, elapsed)
	}
	return nil
}
