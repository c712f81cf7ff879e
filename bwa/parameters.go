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
	"log"

	"github.com/exascience/elbwa/native"
)

// Parameters are the BWA-MEM scoring and behavior settings.
//
// Parameters is a value type. Each setter returns a modified copy, so
// settings handed to an Aligner cannot change afterwards.
type Parameters struct {
	engine native.Engine
	opt    native.Options
}

// NewParameters returns the native default parameters of engine. It
// fails with native.ErrAllocation if the native initializer cannot
// allocate.
func NewParameters(engine native.Engine) (Parameters, error) {
	opt, err := engine.DefaultOptions()
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{engine: engine, opt: opt}, nil
}

// DefaultParameters returns the default parameters of
// native.Default(). It panics if the native layer runs out of memory.
func DefaultParameters() Parameters {
	p, err := NewParameters(native.Default())
	if err != nil {
		log.Panic(err)
	}
	return p
}

// SetScores sets the match score, the mismatch penalty, and the gap
// open and extension penalties for both insertions and deletions, and
// recomputes the scoring matrix. Values are not validated.
func (p Parameters) SetScores(match, mismatch, gapOpen, gapExtend int32) Parameters {
	p.opt.Match = match
	p.opt.Mismatch = mismatch
	p.opt.GapOpenDel = gapOpen
	p.opt.GapOpenIns = gapOpen
	p.opt.GapExtendDel = gapExtend
	p.opt.GapExtendIns = gapExtend
	p.engine.FillScoringMatrix(match, mismatch, &p.opt.Mat)
	return p
}

// SetClipScores sets the 5' and 3' clipping penalties.
func (p Parameters) SetClipScores(clip5, clip3 int32) Parameters {
	p.opt.PenClip5 = clip5
	p.opt.PenClip3 = clip3
	return p
}

// SetUnpaired sets the penalty for an unpaired read pair.
func (p Parameters) SetUnpaired(penalty int32) Parameters {
	p.opt.PenUnpaired = penalty
	return p
}

// SetNoMulti disables the output of alternative alignments for
// multi-mapping reads.
func (p Parameters) SetNoMulti() Parameters {
	p.opt.Flag |= native.FlagNoMulti
	return p
}

// Options returns a copy of the native options.
func (p Parameters) Options() native.Options { return p.opt }

// Match returns the match score.
func (p Parameters) Match() int32 { return p.opt.Match }

// Mismatch returns the mismatch penalty.
func (p Parameters) Mismatch() int32 { return p.opt.Mismatch }

// GapOpen returns the deletion and insertion gap open penalties.
func (p Parameters) GapOpen() (del, ins int32) { return p.opt.GapOpenDel, p.opt.GapOpenIns }

// GapExtend returns the deletion and insertion gap extension penalties.
func (p Parameters) GapExtend() (del, ins int32) { return p.opt.GapExtendDel, p.opt.GapExtendIns }

// ClipScores returns the 5' and 3' clipping penalties.
func (p Parameters) ClipScores() (clip5, clip3 int32) { return p.opt.PenClip5, p.opt.PenClip3 }

// Unpaired returns the unpaired read pair penalty.
func (p Parameters) Unpaired() int32 { return p.opt.PenUnpaired }

// Flag returns the native behavior flags.
func (p Parameters) Flag() int32 { return p.opt.Flag }

// ScoringMatrix returns the 5x5 scoring matrix over A, C, G, T, N.
func (p Parameters) ScoringMatrix() [25]int8 { return p.opt.Mat }
