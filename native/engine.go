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

import "errors"

var (
	// ErrUnavailable is returned when the program was built without a
	// native aligner.
	ErrUnavailable = errors.New("native aligner not available (build with cgo and the bwa tag)")

	// ErrAllocation is returned when the native layer cannot allocate
	// its default options.
	ErrAllocation = errors.New("native allocation failed")

	// ErrIndexLoad is returned when the native index loader fails.
	ErrIndexLoad = errors.New("native index loader failed")

	// ErrIndexMissing is returned when a required index file is absent
	// or unreadable.
	ErrIndexMissing = errors.New("index file missing")

	// ErrForeignIndex is returned when an Index is passed to an Engine
	// that did not load it, or after it was destroyed.
	ErrForeignIndex = errors.New("index not loaded by this engine")
)

// IndexAll requests all loadable index components (BWT with suffix
// array, contig annotations, packed reference), as BWA_IDX_ALL.
const IndexAll = 0x7

// Behavior flags of Options.Flag, bit-compatible with BWA's MEM_F_*.
const (
	FlagPE        = 0x2
	FlagNoPairing = 0x4
	FlagAll       = 0x8
	FlagNoMulti   = 0x10
	FlagNoRescue  = 0x20
	FlagRefHeader = 0x100
	FlagSoftclip  = 0x200
	FlagSmartPE   = 0x400
)

// Options mirrors the tunable fields of BWA's mem_opt_t. Fields not
// mirrored here keep the native defaults.
type Options struct {
	Match        int32 // a
	Mismatch     int32 // b
	GapOpenDel   int32
	GapExtendDel int32
	GapOpenIns   int32
	GapExtendIns int32
	PenUnpaired  int32
	PenClip5     int32
	PenClip3     int32
	BandWidth    int32
	ZDrop        int32
	MinScore     int32 // T
	Flag         int32
	MinSeedLen   int32
	MaxOcc       int32
	MaxIns       int32
	MaxMateSW    int32
	Mat          [25]int8
}

// PairStat mirrors mem_pestat_t: the insert size model of one read
// orientation class.
type PairStat struct {
	Failed bool
	Low    int32
	High   int32
	Mean   float64
	StdDev float64
}

// Orientation classes, in BWA's order of the mem_pestat_t array.
const (
	OrientationFF = iota
	OrientationFR
	OrientationRF
	OrientationRR
)

// Read mirrors bseq1_t: one read of a pair, plus the slot for the
// SAM text the engine produces for it.
type Read struct {
	Name string
	ID   int
	Seq  []byte
	Qual []byte
	SAM  Text
}

// Text is a NUL-terminated text buffer allocated by the native
// layer.
type Text interface {
	// Bytes returns the text without the terminating NUL. The slice
	// aliases native memory and is invalid after Free.
	Bytes() []byte

	// Free releases the native memory. It must be called exactly once.
	Free()
}

// Index is a loaded native index.
type Index interface {
	// NumContigs returns the number of reference sequences.
	NumContigs() int

	// Contig returns the name and length of the contig at position i.
	Contig(i int) (name string, length int64)

	// Destroy releases the native index.
	Destroy()
}

// Engine is the native alignment capability.
type Engine interface {
	// DefaultOptions returns the native default options.
	DefaultOptions() (Options, error)

	// FillScoringMatrix derives the 5x5 scoring matrix from match and
	// mismatch scores.
	FillScoringMatrix(match, mismatch int32, mat *[25]int8)

	// LoadIndex loads the index at path with IndexAll.
	LoadIndex(path string) (Index, error)

	// AlignPair aligns one read pair and fills the SAM slot of both
	// reads. Both reads must carry the same Name.
	AlignPair(opt *Options, idx Index, pes *[4]PairStat, reads *[2]Read) error
}
