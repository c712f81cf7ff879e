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

// Package bwa aligns read pairs in-process with BWA-MEM and decodes
// the results into SAM alignments.
//
// A Reference owns a loaded BWA index and the ordered table of its
// contigs. An Aligner combines a Reference with alignment Parameters
// and PairedEndStats, and derives a Dictionary from the reference
// header that turns SAM lines produced by BWA into sam.Alignment
// values with numeric reference ids.
//
// An Aligner can be shared by any number of goroutines. The native
// alignment step runs in parallel; decoding of the resulting lines is
// serialized on the Dictionary, one line at a time.
//
// Typical use:
//
//	aligner, err := bwa.NewAlignerFromPath("hg38.fa")
//	if err != nil {
//		return err
//	}
//	defer aligner.Close()
//	alns1, alns2, err := aligner.AlignReadPair(name, seq1, qual1, seq2, qual2)
package bwa
