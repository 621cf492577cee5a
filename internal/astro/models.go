package astro

import (
	"strings"
	"time"
)

// Season is one of the four fixed three-month buckets used for
// seasonal aggregation (Northern-hemisphere convention).
type Season string

const (
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
)

// SeasonOf maps a date's month to its season: Dec-Feb is Winter,
// Mar-May Spring, Jun-Aug Summer, Sep-Nov Fall.
func SeasonOf(d time.Time) Season {
	switch d.Month() {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Record is one normalized observation from one source for one
// location and calendar date. Records are append-only; nothing in the
// pipeline updates or deletes them after storage.
type Record struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Location string `json:"location" gorm:"index"`

	// Coordinates come from geocoding at acquisition time and are
	// identical across all sources of one acquisition.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Date is the calendar date the observation pertains to,
	// stored as midnight UTC.
	Date time.Time `json:"date" gorm:"index"`

	Sunrise   time.Time `json:"sunrise"`
	Sunset    time.Time `json:"sunset"`
	SolarNoon time.Time `json:"solar_noon"`

	// DayLengthSeconds is the daylight duration. Invariant:
	// equal to Sunset-Sunrise within one second.
	DayLengthSeconds int `json:"day_length"`

	// Source identifies the originating provider, e.g. its domain name.
	Source string `json:"source" gorm:"index"`

	// CreatedAt is assigned by the persistence gateway and only used
	// for default ordering.
	CreatedAt time.Time `json:"created_at"`
}

// DayLengthMinutes returns the day length as fractional minutes.
// Derived statistics are minutes-denominated throughout.
func (r Record) DayLengthMinutes() float64 {
	return float64(r.DayLengthSeconds) / 60.0
}

// Filter narrows a record set by location substring and/or date range.
// Zero values leave the corresponding dimension unfiltered. The same
// filter applies identically to record listing and to every statistic.
type Filter struct {
	Location string
	From     time.Time
	To       time.Time
}

// Matches reports whether a record passes the filter. The location
// match is a case-insensitive substring test on the exact stored label.
func (f Filter) Matches(r Record) bool {
	if f.Location != "" &&
		!strings.Contains(strings.ToLower(r.Location), strings.ToLower(f.Location)) {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To) {
		return false
	}
	return true
}

// DateOnly truncates a timestamp to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
