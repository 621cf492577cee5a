package astro

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource returns a fixed observation or error.
type stubSource struct {
	name string
	obs  Observation
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context, Coordinates, time.Time) (Observation, error) {
	if s.err != nil {
		return Observation{}, s.err
	}
	return s.obs, nil
}

// stubGeocoder resolves everything to one coordinate, or fails.
type stubGeocoder struct {
	coords Coordinates
	err    error
}

func (g *stubGeocoder) Resolve(context.Context, string) (Coordinates, error) {
	return g.coords, g.err
}

// stubStore collects appended records and can fail selectively.
type stubStore struct {
	mu      sync.Mutex
	records []Record
	failFor string // source name whose appends fail
}

func (s *stubStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && rec.Source == s.failFor {
		return errors.New("disk full")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *stubStore) ReadAll(context.Context, Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func goodObservation(day string) Observation {
	sunrise := date(day).Add(4 * time.Hour)
	sunset := date(day).Add(22 * time.Hour)
	return Observation{
		Sunrise:          sunrise,
		Sunset:           sunset,
		SolarNoon:        sunrise.Add(9 * time.Hour),
		DayLengthSeconds: int(sunset.Sub(sunrise) / time.Second),
	}
}

func newTestService(store Store, geocoder Geocoder, sources ...SourceAdapter) *Service {
	return NewService(store, geocoder, sources, nil, 0)
}

func TestAcquireDatePartialFailureIsSuccess(t *testing.T) {
	ok := &stubSource{name: "api.sunrise-sunset.org", obs: goodObservation("2024-06-01")}
	bad := &stubSource{name: "api.sunrisesunset.io", err: errors.New("connection refused")}

	svc := newTestService(&stubStore{}, &stubGeocoder{}, ok, bad)

	records, err := svc.AcquireDate(context.Background(), "Oslo", Coordinates{Lat: 59.9, Lng: 10.7}, date("2024-06-01"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "api.sunrise-sunset.org", records[0].Source)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, 59.9, records[0].Latitude)
	assert.Equal(t, 10.7, records[0].Longitude)
	assert.Equal(t, "Oslo", records[0].Location)
}

func TestAcquireDateAllSourcesFailed(t *testing.T) {
	a := &stubSource{name: "a", err: errors.New("down")}
	b := &stubSource{name: "b", err: errors.New("also down")}

	svc := newTestService(&stubStore{}, &stubGeocoder{}, a, b)

	_, err := svc.AcquireDate(context.Background(), "Oslo", Coordinates{}, date("2024-06-01"))
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}

func TestAcquireDateNoSources(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubGeocoder{})
	_, err := svc.AcquireDate(context.Background(), "Oslo", Coordinates{}, date("2024-06-01"))
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestAcquireDateRejectsInvertedSunriseSunset(t *testing.T) {
	// A source whose sunrise is after sunset has a parsing bug on its
	// side; its record counts as that source's failure.
	inverted := goodObservation("2024-06-01")
	inverted.Sunrise, inverted.Sunset = inverted.Sunset, inverted.Sunrise

	bad := &stubSource{name: "bad", obs: inverted}
	ok := &stubSource{name: "ok", obs: goodObservation("2024-06-01")}

	svc := newTestService(&stubStore{}, &stubGeocoder{}, bad, ok)

	records, err := svc.AcquireDate(context.Background(), "Oslo", Coordinates{}, date("2024-06-01"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Source)
}

func TestAcquireDateRejectsInconsistentDayLength(t *testing.T) {
	obs := goodObservation("2024-06-01")
	obs.DayLengthSeconds += 5 // beyond 1-second tolerance

	svc := newTestService(&stubStore{}, &stubGeocoder{}, &stubSource{name: "bad", obs: obs})

	_, err := svc.AcquireDate(context.Background(), "Oslo", Coordinates{}, date("2024-06-01"))
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}

func TestValidateObservationTolerance(t *testing.T) {
	obs := goodObservation("2024-06-01")

	obs.DayLengthSeconds++ // within tolerance
	assert.NoError(t, validateObservation(obs))

	obs.DayLengthSeconds++ // 2s off
	assert.Error(t, validateObservation(obs))
}

func TestAcquireRangeContinuesPastFailedDates(t *testing.T) {
	// Fails on one specific date only.
	day2 := date("2024-06-02")
	flaky := &sourceByDate{
		name: "flaky",
		fetch: func(d time.Time) (Observation, error) {
			if d.Equal(day2) {
				return Observation{}, errors.New("outage")
			}
			return goodObservation(d.Format("2006-01-02")), nil
		},
	}

	st := &stubStore{}
	svc := newTestService(st, &stubGeocoder{coords: Coordinates{Lat: 59.9, Lng: 10.7}}, flaky)

	var progressCalls int
	report, err := svc.AcquireRange(context.Background(), "Oslo",
		date("2024-06-01"), date("2024-06-03"),
		func(completed, total int) {
			progressCalls++
			assert.Equal(t, progressCalls, completed)
			assert.Equal(t, 3, total)
		})

	require.NoError(t, err)
	assert.Equal(t, 3, report.RequestedDates)
	assert.Equal(t, 3, report.ProcessedDates)
	assert.Equal(t, 2, report.SucceededDates)
	assert.Equal(t, 2, report.StoredRecords)
	assert.Equal(t, []string{"2024-06-02"}, report.FailedDates)
	assert.Equal(t, 3, progressCalls)
	assert.Len(t, st.records, 2)
}

func TestAcquireRangeCapsDateCount(t *testing.T) {
	src := &sourceByDate{
		name:  "ok",
		fetch: func(d time.Time) (Observation, error) { return goodObservation(d.Format("2006-01-02")), nil },
	}

	svc := newTestService(&stubStore{}, &stubGeocoder{}, src)

	report, err := svc.AcquireRange(context.Background(), "Oslo",
		date("2024-06-01"), date("2024-07-15"), nil)

	require.NoError(t, err)
	assert.Equal(t, 45, report.RequestedDates)
	assert.Equal(t, DefaultMaxRangeDates, report.ProcessedDates)
	assert.Equal(t, DefaultMaxRangeDates, report.SucceededDates)
}

func TestAcquireRangeGeocodeFailureAborts(t *testing.T) {
	src := &stubSource{name: "untouched", obs: goodObservation("2024-06-01")}
	svc := newTestService(&stubStore{}, &stubGeocoder{err: errors.New("unknown place")}, src)

	_, err := svc.AcquireRange(context.Background(), "Atlantis",
		date("2024-06-01"), date("2024-06-03"), nil)
	assert.Error(t, err)
}

func TestAcquireRangeRejectsInvertedRange(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubGeocoder{}, &stubSource{name: "ok"})
	_, err := svc.AcquireRange(context.Background(), "Oslo",
		date("2024-06-03"), date("2024-06-01"), nil)
	assert.Error(t, err)
}

func TestAcquireRangeStoreFailureDoesNotBlockSiblings(t *testing.T) {
	a := &stubSource{name: "a", obs: goodObservation("2024-06-01")}
	b := &stubSource{name: "b", obs: goodObservation("2024-06-01")}

	st := &stubStore{failFor: "a"}
	svc := newTestService(st, &stubGeocoder{}, a, b)

	report, err := svc.AcquireRange(context.Background(), "Oslo",
		date("2024-06-01"), date("2024-06-01"), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, report.SucceededDates)
	assert.Equal(t, 1, report.StoredRecords)
	require.Len(t, st.records, 1)
	assert.Equal(t, "b", st.records[0].Source)
}

func TestStatisticsReadsThroughStore(t *testing.T) {
	st := &stubStore{}
	require.NoError(t, st.Append(context.Background(), rec("Oslo", 59.9, "2024-06-01", 64800)))
	require.NoError(t, st.Append(context.Background(), rec("Oslo", 59.9, "2024-12-01", 21600)))

	svc := newTestService(st, &stubGeocoder{})
	stats, err := svc.Statistics(context.Background(), Filter{})
	require.NoError(t, err)

	require.Len(t, stats.Locations, 1)
	assert.Equal(t, 720.0, stats.Locations[0].AvgDayLengthMinutes)
}

// sourceByDate lets a test vary behaviour per requested date.
type sourceByDate struct {
	name  string
	fetch func(time.Time) (Observation, error)
}

func (s *sourceByDate) Name() string { return s.name }

func (s *sourceByDate) Fetch(_ context.Context, _ Coordinates, d time.Time) (Observation, error) {
	return s.fetch(d)
}
