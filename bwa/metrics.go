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

package bwa

import (
	"sync/atomic"
	"time"
)

// Operation names passed to MetricsRecorder.Observe.
const (
	OperationLoadReference = "load_reference"
	OperationAlignReadPair = "align_read_pair"
)

// MetricsRecorder receives the outcome and duration of every
// reference load and alignment call.
type MetricsRecorder interface {
	Observe(operation string, success bool, duration time.Duration)
}

// NoopMetricsRecorder discards all observations.
type NoopMetricsRecorder struct{}

// Observe implements MetricsRecorder.
func (NoopMetricsRecorder) Observe(string, bool, time.Duration) {}

// BasicMetricsRecorder keeps in-memory counters.
type BasicMetricsRecorder struct {
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	AlignCount      atomic.Int64
	AlignErrors     atomic.Int64
	AlignTotalNanos atomic.Int64
}

// Observe implements MetricsRecorder. Unknown operations are ignored.
func (b *BasicMetricsRecorder) Observe(operation string, success bool, duration time.Duration) {
	switch operation {
	case OperationLoadReference:
		b.LoadCount.Add(1)
		if !success {
			b.LoadErrors.Add(1)
		}
	case OperationAlignReadPair:
		b.AlignCount.Add(1)
		b.AlignTotalNanos.Add(duration.Nanoseconds())
		if !success {
			b.AlignErrors.Add(1)
		}
	}
}

// BasicMetricsStats is a snapshot of a BasicMetricsRecorder.
type BasicMetricsStats struct {
	LoadCount     int64
	LoadErrors    int64
	AlignCount    int64
	AlignErrors   int64
	AlignAvgNanos int64
}

// Stats returns a snapshot of the current counters.
func (b *BasicMetricsRecorder) Stats() BasicMetricsStats {
	stats := BasicMetricsStats{
		LoadCount:   b.LoadCount.Load(),
		LoadErrors:  b.LoadErrors.Load(),
		AlignCount:  b.AlignCount.Load(),
		AlignErrors: b.AlignErrors.Load(),
	}
	if stats.AlignCount > 0 {
		stats.AlignAvgNanos = b.AlignTotalNanos.Load() / stats.AlignCount
	}
	return stats
}
