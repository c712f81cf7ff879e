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

package native

// BWADefaults returns the defaults of mem_opt_init in BWA-MEM 0.7.
// Engines without access to the native initializer use these.
func BWADefaults() Options {
	opt := Options{
		Match:        1,
		Mismatch:     4,
		GapOpenDel:   6,
		GapExtendDel: 1,
		GapOpenIns:   6,
		GapExtendIns: 1,
		PenUnpaired:  17,
		PenClip5:     5,
		PenClip3:     5,
		BandWidth:    100,
		ZDrop:        100,
		MinScore:     30,
		MinSeedLen:   19,
		MaxOcc:       500,
		MaxIns:       10000,
		MaxMateSW:    50,
	}
	FillScoringMatrix(opt.Match, opt.Mismatch, &opt.Mat)
	return opt
}

// FillScoringMatrix is bwa_fill_scmat in Go: match on the diagonal,
// -mismatch elsewhere, and -1 for every pairing with an ambiguous
// base.
func FillScoringMatrix(match, mismatch int32, mat *[25]int8) {
	k := 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				mat[k] = int8(match)
			} else {
				mat[k] = int8(-mismatch)
			}
			k++
		}
		mat[k] = -1
		k++
	}
	for j := 0; j < 5; j++ {
		mat[k] = -1
		k++
	}
}
