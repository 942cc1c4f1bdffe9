package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelocr_scans_total",
			Help: "Total number of label extraction runs",
		},
		[]string{"status"}, // ok, no_text, error
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labelocr_scan_duration_seconds",
			Help:    "End-to-end extraction duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
	)

	scanConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labelocr_scan_confidence",
			Help:    "Final combined confidence per run",
			Buckets: []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	engineSelectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelocr_engine_selected_total",
			Help: "Recognition engine chosen by the orchestrator",
		},
		[]string{"engine"},
	)

	nutrientsFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labelocr_nutrients_found",
			Help:    "Number of canonical nutrients found per run",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7},
		},
	)
)
