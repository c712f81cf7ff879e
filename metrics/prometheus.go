// elBWA: in-process BWA-MEM alignment for SAM/BAM pipelines.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elbwa/blob/master/LICENSE.txt>.

// Package metrics exports alignment metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/exascience/elbwa/bwa"
)

// PrometheusRecorder implements bwa.MetricsRecorder with a counter and
// a latency histogram, both labeled by operation and status.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

var _ bwa.MetricsRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them
// with reg, or with prometheus.DefaultRegisterer if reg is nil.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elbwa_operations_total",
			Help: "Total reference loads and read pair alignments",
		}, []string{"op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elbwa_operation_latency_seconds",
			Help:    "Latency of reference loads and read pair alignments",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op", "status"}),
	}
	reg.MustRegister(r.operations, r.latency)
	return r
}

// Observe implements bwa.MetricsRecorder.
func (r *PrometheusRecorder) Observe(operation string, success bool, duration time.Duration) {
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.latency.WithLabelValues(operation, status).Observe(duration.Seconds())
}
