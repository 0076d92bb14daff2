// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes the service's Prometheus instrumentation.
// Registration happens eagerly; when no /metrics endpoint is mounted
// the registration is harmless.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	fetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdg_fetch_requests_total",
		Help: "Total fetch requests by strategy and outcome",
	}, []string{"strategy", "status"})

	fetchSlicesRead = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdg_fetch_slices_read",
		Help:    "Distribution of slice blobs read per fetch",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})

	fetchPrecision = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdg_fetch_precision",
		Help:    "Distribution of the precision score of answered fetches",
		Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 1},
	})

	preprocessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdg_preprocess_total",
		Help: "Total preprocess runs by outcome",
	}, []string{"status"})

	preprocessDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdg_preprocess_duration_seconds",
		Help:    "Wall-clock duration of preprocess runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(
		fetchRequestsTotal,
		fetchSlicesRead,
		fetchPrecision,
		preprocessTotal,
		preprocessDuration,
	)
}

// ObserveFetch records one answered fetch.
func ObserveFetch(strategy string, slices int, precision float64) {
	fetchRequestsTotal.WithLabelValues(strategy, "ok").Inc()
	fetchSlicesRead.Observe(float64(slices))
	fetchPrecision.Observe(precision)
}

// ObserveFetchError records one failed fetch.
func ObserveFetchError(strategy string) {
	fetchRequestsTotal.WithLabelValues(strategy, "error").Inc()
}

// ObservePreprocess records one preprocess run.
func ObservePreprocess(start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	preprocessTotal.WithLabelValues(status).Inc()
	preprocessDuration.Observe(time.Since(start).Seconds())
}
