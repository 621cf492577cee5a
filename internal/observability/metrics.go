package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the acquisition pipeline.
// A nil *Metrics is valid and records nothing, so tests and library
// callers can skip registration entirely.
type Metrics struct {
	SourceFetches   *prometheus.CounterVec // labels: source, outcome={success,failure}
	RecordsRejected *prometheus.CounterVec // labels: source
	RecordsStored   prometheus.Counter
	StoreFailures   prometheus.Counter
	GeocodeLookups  *prometheus.CounterVec // labels: outcome={success,failure}
}

// NewMetrics creates and registers all pipeline metrics with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daylight",
			Name:      "source_fetches_total",
			Help:      "Total fetch attempts per source and outcome.",
		}, []string{"source", "outcome"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daylight",
			Name:      "records_rejected_total",
			Help:      "Normalized records rejected by validation, per source.",
		}, []string{"source"}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "daylight",
			Name:      "records_stored_total",
			Help:      "Records successfully appended to the store.",
		}),
		StoreFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "daylight",
			Name:      "store_failures_total",
			Help:      "Record appends that failed.",
		}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daylight",
			Name:      "geocode_lookups_total",
			Help:      "Geocoding lookups per outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.SourceFetches,
		m.RecordsRejected,
		m.RecordsStored,
		m.StoreFailures,
		m.GeocodeLookups,
	)
	return m
}

// ObserveFetch records one source fetch outcome.
func (m *Metrics) ObserveFetch(source string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.SourceFetches.WithLabelValues(source, outcome).Inc()
}

// ObserveRejected records a validation rejection for a source.
func (m *Metrics) ObserveRejected(source string) {
	if m == nil {
		return
	}
	m.RecordsRejected.WithLabelValues(source).Inc()
}

// ObserveStored records a successful append.
func (m *Metrics) ObserveStored() {
	if m == nil {
		return
	}
	m.RecordsStored.Inc()
}

// ObserveStoreFailure records a failed append.
func (m *Metrics) ObserveStoreFailure() {
	if m == nil {
		return
	}
	m.StoreFailures.Inc()
}

// ObserveGeocode records one geocoding outcome.
func (m *Metrics) ObserveGeocode(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.GeocodeLookups.WithLabelValues(outcome).Inc()
}
