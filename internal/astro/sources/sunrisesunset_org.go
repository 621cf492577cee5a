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

// SunriseSunsetOrg implements astro.SourceAdapter for api.sunrise-sunset.org.
// The provider returns already-absolute ISO-8601 timestamps and an
// integer day length in seconds; any status other than "OK" is a failure.
type SunriseSunsetOrg struct {
	name    string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSunriseSunsetOrg(client *http.Client) *SunriseSunsetOrg {
	return &SunriseSunsetOrg{
		name:    "api.sunrise-sunset.org",
		baseURL: "https://api.sunrise-sunset.org/json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("sunrise-sunset.org"),
	}
}

func (p *SunriseSunsetOrg) Name() string {
	return p.name
}

func (p *SunriseSunsetOrg) Fetch(ctx context.Context, coords astro.Coordinates, date time.Time) (astro.Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coords.Lat))
		values.Set("lng", fmt.Sprintf("%f", coords.Lng))
		values.Set("date", date.Format("2006-01-02"))
		// formatted=0 switches the API from 12-hour strings to
		// ISO-8601 timestamps and integer seconds.
		values.Set("formatted", "0")

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
			Sunrise   string `json:"sunrise"`
			Sunset    string `json:"sunset"`
			SolarNoon string `json:"solar_noon"`
			DayLength int    `json:"day_length"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return astro.Observation{}, err
	}

	if payload.Status != "OK" {
		return astro.Observation{}, fmt.Errorf("provider status %q", payload.Status)
	}

	sunrise, err := time.Parse(time.RFC3339, payload.Results.Sunrise)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing sunrise %q: %w", payload.Results.Sunrise, err)
	}
	sunset, err := time.Parse(time.RFC3339, payload.Results.Sunset)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing sunset %q: %w", payload.Results.Sunset, err)
	}
	solarNoon, err := time.Parse(time.RFC3339, payload.Results.SolarNoon)
	if err != nil {
		return astro.Observation{}, fmt.Errorf("parsing solar noon %q: %w", payload.Results.SolarNoon, err)
	}

	return astro.Observation{
		Sunrise:          sunrise.UTC(),
		Sunset:           sunset.UTC(),
		SolarNoon:        solarNoon.UTC(),
		DayLengthSeconds: payload.Results.DayLength,
	}, nil
}
