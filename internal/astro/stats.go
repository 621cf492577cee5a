package astro

import (
	"math"
	"sort"
)

// AggregateStats summarizes day length over the whole record set in
// whole minutes (rounded half away from zero after dividing by 60).
type AggregateStats struct {
	MeanMinutes int `json:"meanMinutes"`
	MaxMinutes  int `json:"maxMinutes"`
	MinMinutes  int `json:"minMinutes"`
}

// LocationStat is the average day length for one distinct location
// label. Labels are compared exactly; spelling variants are distinct.
type LocationStat struct {
	Location            string  `json:"location"`
	AvgDayLengthMinutes float64 `json:"avgDayLengthMinutes"`
	Records             int     `json:"records"`
}

// SourceDistribution counts records per source.
type SourceDistribution struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// LatitudeCorrelation is the Pearson correlation between latitude and
// day length (minutes) across all records, with a qualitative label.
type LatitudeCorrelation struct {
	Coefficient float64 `json:"coefficient"`
	Label       string  `json:"label"`
}

// Trend directions for per-location day-length change over time.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// LocationTrend describes how a location's day length changes per day,
// averaged over consecutive date gaps.
type LocationTrend struct {
	Location                string  `json:"location"`
	Direction               string  `json:"direction"`
	ChangeRateMinutesPerDay float64 `json:"changeRateMinutesPerDay"`
}

// SeasonalPattern is the mean day length and the top locations for one
// season present in the data.
type SeasonalPattern struct {
	Season              Season   `json:"season"`
	AvgDayLengthMinutes float64  `json:"avgDayLengthMinutes"`
	TopLocations        []string `json:"topLocations"`
}

// Statistics is the full derived view over a record set. It is
// recomputed from scratch on every invocation; nothing here is
// persisted or incrementally maintained.
type Statistics struct {
	TotalRecords int                  `json:"totalRecords"`
	Aggregate    AggregateStats       `json:"aggregate"`
	Locations    []LocationStat       `json:"locations"`
	Sources      []SourceDistribution `json:"sources"`
	Correlation  LatitudeCorrelation  `json:"latitudeCorrelation"`
	Trends       []LocationTrend      `json:"trends"`
	Seasons      []SeasonalPattern    `json:"seasons"`
}

// ComputeStatistics derives all statistics from the given records.
// It is a pure function: identical input yields identical output, and
// the input slice is never mutated. Grouped outputs preserve
// first-encountered order so repeated runs are deterministic.
func ComputeStatistics(records []Record) Statistics {
	stats := Statistics{
		TotalRecords: len(records),
		Correlation:  latitudeCorrelation(records),
	}
	if len(records) == 0 {
		return stats
	}

	stats.Aggregate = aggregateStats(records)
	stats.Locations = locationStats(records)
	stats.Sources = sourceDistribution(records)
	stats.Trends = locationTrends(records)
	stats.Seasons = seasonalPatterns(records)
	return stats
}

// roundMinutes converts seconds-denominated values already divided by
// 60 into whole minutes, rounding half away from zero.
func roundMinutes(minutes float64) int {
	return int(math.Round(minutes))
}

func aggregateStats(records []Record) AggregateStats {
	var sum float64
	min := records[0].DayLengthMinutes()
	max := min

	for _, r := range records {
		m := r.DayLengthMinutes()
		sum += m
		if m < min {
			min = m
		}
		if m > max {
			max = m
		}
	}

	return AggregateStats{
		MeanMinutes: roundMinutes(sum / float64(len(records))),
		MaxMinutes:  roundMinutes(max),
		MinMinutes:  roundMinutes(min),
	}
}

func locationStats(records []Record) []LocationStat {
	order := make([]string, 0)
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range records {
		if _, seen := sums[r.Location]; !seen {
			order = append(order, r.Location)
		}
		sums[r.Location] += r.DayLengthMinutes()
		counts[r.Location]++
	}

	out := make([]LocationStat, 0, len(order))
	for _, loc := range order {
		out = append(out, LocationStat{
			Location:            loc,
			AvgDayLengthMinutes: sums[loc] / float64(counts[loc]),
			Records:             counts[loc],
		})
	}
	return out
}

func sourceDistribution(records []Record) []SourceDistribution {
	order := make([]string, 0)
	counts := make(map[string]int)

	for _, r := range records {
		if _, seen := counts[r.Source]; !seen {
			order = append(order, r.Source)
		}
		counts[r.Source]++
	}

	out := make([]SourceDistribution, 0, len(order))
	for _, src := range order {
		out = append(out, SourceDistribution{Source: src, Count: counts[src]})
	}
	return out
}

// latitudeCorrelation computes the Pearson coefficient between
// latitude and day length in minutes. Fewer than 3 records, or zero
// variance in either variable, yields 0 rather than NaN.
func latitudeCorrelation(records []Record) LatitudeCorrelation {
	n := float64(len(records))
	if len(records) < 3 {
		return LatitudeCorrelation{Coefficient: 0, Label: correlationLabel(0)}
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for _, r := range records {
		x := r.Latitude
		y := r.DayLengthMinutes()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		sumYY += y * y
	}

	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 {
		return LatitudeCorrelation{Coefficient: 0, Label: correlationLabel(0)}
	}

	coeff := (n*sumXY - sumX*sumY) / denom
	// Guard against float drift pushing the result out of [-1, 1].
	coeff = math.Max(-1, math.Min(1, coeff))

	return LatitudeCorrelation{Coefficient: coeff, Label: correlationLabel(coeff)}
}

func correlationLabel(coeff float64) string {
	switch {
	case coeff > 0.7:
		return "strong positive"
	case coeff > 0.3:
		return "moderate positive"
	case coeff > -0.3:
		return "none"
	case coeff > -0.7:
		return "moderate negative"
	default:
		return "strong negative"
	}
}

// locationTrends reports a trend for every location with at least two
// records. The rate is the plain average of per-gap rates, each gap
// weighted equally regardless of its length in days. Same-date pairs
// contribute nothing (no elapsed days to divide by).
func locationTrends(records []Record) []LocationTrend {
	order := make([]string, 0)
	byLocation := make(map[string][]Record)

	for _, r := range records {
		if _, seen := byLocation[r.Location]; !seen {
			order = append(order, r.Location)
		}
		byLocation[r.Location] = append(byLocation[r.Location], r)
	}

	out := make([]LocationTrend, 0)
	for _, loc := range order {
		recs := byLocation[loc]
		if len(recs) < 2 {
			continue
		}

		sorted := make([]Record, len(recs))
		copy(sorted, recs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date)
		})

		var rateSum float64
		var gaps int
		for i := 1; i < len(sorted); i++ {
			days := sorted[i].Date.Sub(sorted[i-1].Date).Hours() / 24
			if days <= 0 {
				continue
			}
			deltaMinutes := sorted[i].DayLengthMinutes() - sorted[i-1].DayLengthMinutes()
			rateSum += deltaMinutes / days
			gaps++
		}
		if gaps == 0 {
			continue
		}

		rate := rateSum / float64(gaps)
		direction := TrendStable
		if rate > 1 {
			direction = TrendIncreasing
		} else if rate < -1 {
			direction = TrendDecreasing
		}

		out = append(out, LocationTrend{
			Location:                loc,
			Direction:               direction,
			ChangeRateMinutesPerDay: rate,
		})
	}
	return out
}

// seasonOrder is the fixed presentation order for seasonal patterns.
var seasonOrder = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}

func seasonalPatterns(records []Record) []SeasonalPattern {
	bySeason := make(map[Season][]Record)
	for _, r := range records {
		s := SeasonOf(r.Date)
		bySeason[s] = append(bySeason[s], r)
	}

	out := make([]SeasonalPattern, 0, len(bySeason))
	for _, season := range seasonOrder {
		recs, ok := bySeason[season]
		if !ok {
			continue
		}

		var sum float64
		locOrder := make([]string, 0)
		locSums := make(map[string]float64)
		locCounts := make(map[string]int)

		for _, r := range recs {
			m := r.DayLengthMinutes()
			sum += m
			if _, seen := locSums[r.Location]; !seen {
				locOrder = append(locOrder, r.Location)
			}
			locSums[r.Location] += m
			locCounts[r.Location]++
		}

		// Rank locations by their seasonal average; ties keep
		// first-encountered order via the stable sort.
		sort.SliceStable(locOrder, func(i, j int) bool {
			avgI := locSums[locOrder[i]] / float64(locCounts[locOrder[i]])
			avgJ := locSums[locOrder[j]] / float64(locCounts[locOrder[j]])
			return avgI > avgJ
		})
		if len(locOrder) > 3 {
			locOrder = locOrder[:3]
		}

		out = append(out, SeasonalPattern{
			Season:              season,
			AvgDayLengthMinutes: sum / float64(len(recs)),
			TopLocations:        locOrder,
		})
	}
	return out
}
