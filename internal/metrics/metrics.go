package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sportsbook_explorer"

// Fetch outcomes
const (
	OutcomeSuccess      = "success"
	OutcomeNetworkError = "network_error"
	OutcomeFormatError  = "format_error"
	OutcomeInvalidQuery = "invalid_query"
)

// Metrics holds the explorer's Prometheus collectors
type Metrics struct {
	Fetches          *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	SelectionsParsed prometheus.Counter
	Rows             *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Category fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and parsing one category.",
			Buckets:   prometheus.DefBuckets,
		}),
		SelectionsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_parsed_total",
			Help:      "Selections run through the pivot.",
		}),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Output rows by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.Fetches, m.FetchDuration, m.SelectionsParsed, m.Rows)
	return m
}

// ObserveFetch records the outcome and duration of one explore
func (m *Metrics) ObserveFetch(outcome string, seconds float64) {
	m.Fetches.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(seconds)
}

// ObserveRows records parsed selection and row counts
func (m *Metrics) ObserveRows(selections, pivotRows, flatRows int) {
	m.SelectionsParsed.Add(float64(selections))
	m.Rows.WithLabelValues("pivot").Add(float64(pivotRows))
	m.Rows.WithLabelValues("flat").Add(float64(flatRows))
}
