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
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/exascience/elbwa/internal"
	"github.com/exascience/elbwa/native"
	"github.com/exascience/elbwa/sam"
	"github.com/exascience/elbwa/utils"
)

// An Aligner aligns read pairs against a Reference.
//
// Its Parameters and PairedEndStats are fixed at construction. It is
// safe for concurrent use.
type Aligner struct {
	ref     *Reference
	dict    *Dictionary
	params  Parameters
	pes     PairedEndStats
	logger  *Logger
	metrics MetricsRecorder

	ownsReference bool
	closed        atomic.Bool
}

// NewAligner creates an aligner and derives its Dictionary from the
// header text of ref. The logger and metrics recorder default to those of
// ref.
func NewAligner(ref *Reference, params Parameters, pes PairedEndStats, opts ...Option) (*Aligner, error) {
	if ref.closed() {
		return nil, ErrClosed
	}
	o := (&options{engine: ref.engine, logger: ref.logger, metrics: ref.metrics}).apply(opts)
	dict, err := ParseDictionary(ref.HeaderText())
	if err != nil {
		return nil, err
	}
	return &Aligner{
		ref:     ref,
		dict:    dict,
		params:  params,
		pes:     pes,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// NewAlignerFromPath opens the reference at path and creates an
// aligner with the engine's default parameters and
// DefaultPairedEndStats. Closing the aligner closes the reference.
func NewAlignerFromPath(path string, opts ...Option) (*Aligner, error) {
	ref, err := OpenReference(path, opts...)
	if err != nil {
		return nil, err
	}
	params, err := NewParameters(ref.engine)
	if err != nil {
		_ = ref.Close()
		return nil, err
	}
	a, err := NewAligner(ref, params, DefaultPairedEndStats(), opts...)
	if err != nil {
		_ = ref.Close()
		return nil, err
	}
	a.ownsReference = true
	return a, nil
}

// Reference returns the reference of the aligner.
func (a *Aligner) Reference() *Reference { return a.ref }

// Dictionary returns the dictionary used for decoding.
func (a *Aligner) Dictionary() *Dictionary { return a.dict }

// Parameters returns the alignment parameters.
func (a *Aligner) Parameters() Parameters { return a.params }

// PairedEndStats returns the insert size model.
func (a *Aligner) PairedEndStats() PairedEndStats { return a.pes }

// Header returns a complete SAM header for the alignments of a: an
// @HD record, the @SQ records of the reference, and a @PG record for
// this library.
func (a *Aligner) Header() *sam.Header {
	hdr := sam.NewHeader()
	hdr.EnsureHD()
	a.ref.PopulateHeader(hdr)
	hdr.PG = append(hdr.PG, utils.StringMap{
		"ID": utils.ProgramName,
		"PN": utils.ProgramName,
		"VN": utils.ProgramVersion,
	})
	return hdr
}

// Close makes further calls fail with ErrClosed. If the aligner was
// created by NewAlignerFromPath, it also closes the reference.
func (a *Aligner) Close() error {
	if a.closed.Swap(true) {
		return ErrClosed
	}
	if a.ownsReference {
		return a.ref.Close()
	}
	return nil
}

// AlignReadPair aligns a read pair and returns the alignments of
// each read in the order BWA reports them. A read has more than one
// alignment when it is split or has supplementary alignments.
//
// The input buffers are not modified. Lengths of sequences and
// qualities are not checked; an empty quality is passed on as
// missing. If any line fails to decode, no alignments are returned.
func (a *Aligner) AlignReadPair(name string, seq1, qual1, seq2, qual2 []byte) (alns1, alns2 []*sam.Alignment, err error) {
	start := time.Now()
	defer func() {
		a.metrics.Observe(OperationAlignReadPair, err == nil, time.Since(start))
		a.logger.LogAlignment(name, len(alns1), len(alns2), err)
	}()

	if a.closed.Load() {
		return nil, nil, ErrClosed
	}

	// BWA rewrites sequences in place.
	buffers := [4][]byte{
		internal.CopyByteBuffer(seq1),
		internal.CopyByteBuffer(qual1),
		internal.CopyByteBuffer(seq2),
		internal.CopyByteBuffer(qual2),
	}
	defer func() {
		for _, buf := range buffers {
			internal.ReleaseByteBuffer(buf)
		}
	}()

	// Both reads of a pair share id 0.
	reads := [2]native.Read{
		{Name: name, ID: 0, Seq: buffers[0], Qual: buffers[1]},
		{Name: name, ID: 0, Seq: buffers[2], Qual: buffers[3]},
	}
	opt := a.params.opt
	pes := a.pes.slots
	defer func() {
		for i := range reads {
			if reads[i].SAM != nil {
				reads[i].SAM.Free()
			}
		}
	}()
	if err = a.ref.alignPair(&opt, &pes, &reads); err != nil {
		return nil, nil, err
	}

	if alns1, err = a.decode(name, 1, reads[0].SAM); err != nil {
		return nil, nil, err
	}
	if alns2, err = a.decode(name, 2, reads[1].SAM); err != nil {
		return nil, nil, err
	}
	return alns1, alns2, nil
}

func (a *Aligner) decode(name string, read int, text native.Text) ([]*sam.Alignment, error) {
	if text == nil {
		return nil, nil
	}
	var alns []*sam.Alignment
	data := text.Bytes()
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		if len(line) == 0 {
			continue
		}
		aln, err := a.dict.DecodeLine(line)
		if err != nil {
			a.logger.LogDecodeFailure(name, read, err)
			return nil, fmt.Errorf("read %d: %w", read, err)
		}
		alns = append(alns, aln)
	}
	return alns, nil
}
