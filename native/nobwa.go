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

//go:build !cgo || !bwa

package native

type unavailableEngine struct{}

// Default returns an engine without native alignment support. Its
// options and scoring matrices are computed in Go.
func Default() Engine {
	return unavailableEngine{}
}

func (unavailableEngine) DefaultOptions() (Options, error) {
	return BWADefaults(), nil
}

func (unavailableEngine) FillScoringMatrix(match, mismatch int32, mat *[25]int8) {
	FillScoringMatrix(match, mismatch, mat)
}

func (unavailableEngine) LoadIndex(string) (Index, error) {
	return nil, ErrUnavailable
}

func (unavailableEngine) AlignPair(*Options, Index, *[4]PairStat, *[2]Read) error {
	return ErrUnavailable
}
