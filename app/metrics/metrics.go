package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_listing_pages_total",
			Help: "Listing page fetches by result (ok, empty, error)",
		},
		[]string{"result"},
	)

	DetailsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_detail_pages_total",
			Help: "Detail page fetches by result (ok, error)",
		},
		[]string{"result"},
	)

	ParseWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_parse_warnings_total",
			Help: "Listing items that could not be fully parsed",
		},
	)

	ReleasesAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_releases_added_total",
			Help: "Releases merged into the collection by trigger",
		},
		[]string{"trigger"},
	)

	CollectionSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radar_collection_size",
			Help: "Number of releases in the persisted collection",
		},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radar_run_duration_seconds",
			Help:    "Duration of scrape-and-reconcile runs",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"trigger"},
	)
)

func init() {
	prometheus.MustRegister(PagesFetched, DetailsFetched, ParseWarnings, ReleasesAdded, CollectionSize, RunDuration)
}
