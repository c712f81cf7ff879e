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

import "github.com/exascience/elbwa/native"

// Default insert size model for short-fragment paired-end libraries.
const (
	DefaultInsertMean   = 200
	DefaultInsertStdDev = 100
	DefaultInsertLow    = 35
	DefaultInsertHigh   = 600
)

// failedStdDev is the standard deviation of orientation classes
// excluded from pair rescue.
const failedStdDev = 100

// PairedEndStats is the insert size model for the four read
// orientation classes FF, FR, RF and RR, in native order.
type PairedEndStats struct {
	slots [4]native.PairStat
}

// SimplePairedEndStats returns a model in which only forward-reverse
// pairs are expected, with the given insert size distribution.
func SimplePairedEndStats(mean, stdDev float64, low, high int32) PairedEndStats {
	var s PairedEndStats
	for i := range s.slots {
		s.slots[i] = native.PairStat{Failed: true, StdDev: failedStdDev}
	}
	s.slots[native.OrientationFR] = native.PairStat{
		Low:    low,
		High:   high,
		Mean:   mean,
		StdDev: stdDev,
	}
	return s
}

// DefaultPairedEndStats returns SimplePairedEndStats(200, 100, 35, 600).
func DefaultPairedEndStats() PairedEndStats {
	return SimplePairedEndStats(DefaultInsertMean, DefaultInsertStdDev, DefaultInsertLow, DefaultInsertHigh)
}

// Orientation returns the model of orientation class i, one of the
// native.Orientation constants.
func (s PairedEndStats) Orientation(i int) native.PairStat {
	return s.slots[i]
}
