package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
)

// SunriseSunsetIO implements astro.SourceAdapter for api.sunrisesunset.io.
// This provider reports local wall-clock times as 12-hour "hh:mm:ss AM/PM"
// strings alongside a signed utc_offset in minutes, and encodes the day
// length as "HH:MM:SS" text. The adapter owns all of that arithmetic and
// hands back absolute instants.
type SunriseSunsetIO struct {
	name    string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSunriseSunsetIO(client *http.Client) *SunriseSunsetIO {
	return &SunriseSunsetIO{
		name:    "api.sunrisesunset.io",
		baseURL: "https://api.sunrisesunset.io/json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("sunrisesunset.io"),
	}
}

func (p *SunriseSunsetIO) Name() string {
	return p.name
}

func (p *SunriseSunsetIO) Fetch(ctx context.Context, coords astro.Coordinates, date time.Time) (astro.Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coords.Lat))
		values.Set("lng", fmt.Sprintf("%f", coords.Lng))
		values.Set("date", date.Format("2006-01-02"))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return astro.Observation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status  string `json:"status"`
		Results struct {
			Date      string `json:"date"`
			Sunrise   string `json:"sunrise"`
			Sunset    string `json:"sunset"`
			SolarNoon string `json:"solar_noon"`
			DayLength string `json:"day_length"`
			UTCOffset int    `json:"utc_offset"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return astro.Observation{}, err
	}

	if payload.Status != "OK" {
		return astro.Observation{}, fmt.Errorf("provider status %q", payload.Status)
	}

	reportDate, err := time.Parse("2006-01-02", payload.Results.Date)
	if err != nil {
		// The report date should always be present; fall back to the
		// requested date if the provider omits it.
		reportDate = astro.DateOnly(date)
	}

	sunrise, err := localClockToInstant(payload.Results.Sunrise, reportDate, payload.Results.UTCOffset)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing sunrise %q: %w", payload.Results.Sunrise, err)
	}
	sunset, err := localClockToInstant(payload.Results.Sunset, reportDate, payload.Results.UTCOffset)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing sunset %q: %w", payload.Results.Sunset, err)
	}
	solarNoon, err := localClockToInstant(payload.Results.SolarNoon, reportDate, payload.Results.UTCOffset)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing solar noon %q: %w", payload.Results.SolarNoon, err)
	}

	dayLength, err := clockTextToSeconds(payload.Results.DayLength)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing day length %q: %w", payload.Results.DayLength, err)
	}

	return astro.Observation{
		Sunrise:          sunrise,
		Sunset:           sunset,
		SolarNoon:        solarNoon,
		DayLengthSeconds: dayLength,
	}, nil
}

// localClockToInstant combines a 12-hour "hh:mm:ss AM/PM" wall-clock
// string with the report date and shifts it by the provider's UTC
// offset (minutes) into an absolute instant. A sunrise of 06:00:00 AM
// at offset -240 is 10:00:00 UTC.
func localClockToInstant(clock string, date time.Time, offsetMinutes int) (time.Time, error) {
	t, err := time.Parse("3:04:05 PM", clock)
	if err != nil {
		return time.Time{}, err
	}

	zone := time.FixedZone("", offsetMinutes*60)
	local := time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, zone)
	return local.UTC(), nil
}

// clockTextToSeconds converts an "HH:MM:SS" duration string to total
// seconds.
func clockTextToSeconds(s string) (int, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, err
	}
	if m < 0 || m > 59 || sec < 0 || sec > 59 || h < 0 {
		return 0, fmt.Errorf("out-of-range duration component in %q", s)
	}
	return h*3600 + m*60 + sec, nil
}
