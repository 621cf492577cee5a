package sources

import (
	"context"
	"fmt"
	"time"

	sunrise "github.com/nathan-osman/go-sunrise"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
)

// Computed implements astro.SourceAdapter without any network call by
// calculating sunrise and sunset locally. It gives the pipeline a
// source that still works offline; solar noon is the midpoint of the
// daylight interval for this source.
type Computed struct {
	name string
}

func NewComputed() *Computed {
	return &Computed{name: "computed.local"}
}

func (p *Computed) Name() string {
	return p.name
}

func (p *Computed) Fetch(_ context.Context, coords astro.Coordinates, date time.Time) (astro.Observation, error) {
	rise, set := sunrise.SunriseSunset(coords.Lat, coords.Lng, date.Year(), date.Month(), date.Day())

	// Polar day and polar night come back as zero times.
	if rise.IsZero() || set.IsZero() {
		return astro.Observation{}, fmt.Errorf("no sunrise/sunset at lat %.4f on %s",
			coords.Lat, date.Format("2006-01-02"))
	}

	daylight := set.Sub(rise)
	return astro.Observation{
		Sunrise:          rise.UTC(),
		Sunset:           set.UTC(),
		SolarNoon:        rise.Add(daylight / 2).UTC(),
		DayLengthSeconds: int(daylight.Round(time.Second) / time.Second),
	}, nil
}
