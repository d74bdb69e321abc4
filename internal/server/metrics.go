// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregation run outcomes, used as the status label.
const (
	statusOK           = "ok"
	statusMalformed    = "malformed"
	statusUnknownTaxon = "unknown_taxon"
	statusError        = "error"
)

// Name lookup outcomes, used as the result label.
const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)

// metrics holds the collectors of one Server. Each Server owns its registry
// so tests can build servers side by side.
type metrics struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	records  prometheus.Histogram
	lookups  *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &metrics{
		registry: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxoburst_aggregate_runs_total",
			Help: "Aggregation requests by outcome.",
		}, []string{"status"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxoburst_aggregate_duration_seconds",
			Help:    "Time spent parsing and aggregating one upload.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		records: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxoburst_aggregate_records",
			Help:    "Records per successfully aggregated upload.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxoburst_lookup_total",
			Help: "Taxon name lookups by result.",
		}, []string{"result"}),
	}

	for _, s := range []string{statusOK, statusMalformed, statusUnknownTaxon, statusError} {
		m.runs.WithLabelValues(s)
	}
	for _, r := range []string{lookupHit, lookupMiss, lookupError} {
		m.lookups.WithLabelValues(r)
	}
	return m
}
