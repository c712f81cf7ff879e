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

// Package nativetest provides a native.Engine implemented in Go for
// tests.
//
// The engine aligns reads by exact matching on both strands against
// in-memory contigs, and formats its results as BWA-MEM formats SAM
// records. It follows the memory contracts of the native layer: read
// sequences are rewritten in place to nucleotide codes, and every SAM
// text it hands out is tracked until it is freed. Freeing a text twice
// or destroying an index twice panics.
package nativetest

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/exascience/elbwa/fasta"
	"github.com/exascience/elbwa/native"
)

// Engine is a native.Engine for tests. The zero value is not usable;
// use New.
type Engine struct {
	mu          sync.Mutex
	references  map[string][]fasta.Contig
	scripts     map[string][2]string
	failDefault bool
	failAlign   error
	lastOptions native.Options
	lastReadIDs [2]int
	texts       int
	indexes     int
	alignments  int
}

// New returns an engine without any registered references.
func New() *Engine {
	return &Engine{
		references: make(map[string][]fasta.Contig),
		scripts:    make(map[string][2]string),
	}
}

// AddReference registers contigs under path. LoadIndex on path then
// succeeds without touching the file system.
func (e *Engine) AddReference(path string, contigs ...fasta.Contig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.references[path] = contigs
}

// Script makes the engine return the given SAM text for the reads of
// the pair with the given name instead of aligning them. Each text
// holds zero or more newline-terminated lines.
func (e *Engine) Script(name, sam1, sam2 string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts[name] = [2]string{sam1, sam2}
}

// FailDefaultOptions makes DefaultOptions report native.ErrAllocation.
func (e *Engine) FailDefaultOptions(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failDefault = fail
}

// FailAlignments makes AlignPair return err. A nil err restores
// normal operation.
func (e *Engine) FailAlignments(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failAlign = err
}

// OutstandingTexts returns the number of SAM texts not yet freed.
func (e *Engine) OutstandingTexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.texts
}

// LiveIndexes returns the number of loaded indexes not yet destroyed.
func (e *Engine) LiveIndexes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexes
}

// Alignments returns the number of successful AlignPair calls.
func (e *Engine) Alignments() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alignments
}

// LastOptions returns the options of the most recent AlignPair call.
func (e *Engine) LastOptions() native.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastOptions
}

// LastReadIDs returns the ids of the reads of the most recent
// AlignPair call.
func (e *Engine) LastReadIDs() [2]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastReadIDs
}

// DefaultOptions implements native.Engine.
func (e *Engine) DefaultOptions() (native.Options, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failDefault {
		return native.Options{}, native.ErrAllocation
	}
	return native.BWADefaults(), nil
}

// FillScoringMatrix implements native.Engine.
func (e *Engine) FillScoringMatrix(match, mismatch int32, mat *[25]int8) {
	native.FillScoringMatrix(match, mismatch, mat)
}

// LoadIndex implements native.Engine. Paths not registered with
// AddReference must name a FASTA file with a complete set of index
// files next to it.
func (e *Engine) LoadIndex(path string) (native.Index, error) {
	e.mu.Lock()
	contigs, ok := e.references[path]
	e.mu.Unlock()
	if !ok {
		if _, err := native.CheckIndex(path); err != nil {
			return nil, err
		}
		var err error
		if contigs, err = fasta.ReadFasta(path, true); err != nil {
			return nil, fmt.Errorf("%w: %v", native.ErrIndexLoad, err)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indexes++
	return &index{engine: e, contigs: contigs}, nil
}

type index struct {
	engine    *Engine
	contigs   []fasta.Contig
	destroyed bool
}

func (idx *index) NumContigs() int {
	return len(idx.contigs)
}

func (idx *index) Contig(i int) (string, int64) {
	c := &idx.contigs[i]
	return c.Name, int64(len(c.Seq))
}

func (idx *index) Destroy() {
	e := idx.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx.destroyed {
		panic("nativetest: index destroyed twice")
	}
	idx.destroyed = true
	e.indexes--
}

type text struct {
	engine *Engine
	data   []byte
	freed  bool
}

func (t *text) Bytes() []byte {
	if t.freed {
		panic("nativetest: text used after free")
	}
	return t.data
}

func (t *text) Free() {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.freed {
		panic("nativetest: text freed twice")
	}
	t.freed = true
	t.data = nil
	e.texts--
}

// AlignPair implements native.Engine.
func (e *Engine) AlignPair(opt *native.Options, idx native.Index, _ *[4]native.PairStat, reads *[2]native.Read) error {
	ix, ok := idx.(*index)
	if !ok || ix.engine != e {
		return native.ErrForeignIndex
	}
	if reads[0].Name != reads[1].Name {
		return fmt.Errorf("nativetest: read names differ: %v, %v", reads[0].Name, reads[1].Name)
	}

	e.mu.Lock()
	if ix.destroyed {
		e.mu.Unlock()
		return native.ErrForeignIndex
	}
	failure := e.failAlign
	script, scripted := e.scripts[reads[0].Name]
	e.lastOptions = *opt
	e.lastReadIDs = [2]int{reads[0].ID, reads[1].ID}
	e.mu.Unlock()

	if failure != nil {
		return failure
	}

	var out [2][]byte
	if scripted {
		out[0], out[1] = []byte(script[0]), []byte(script[1])
	} else {
		var hits [2]hit
		for i := range reads {
			hits[i] = ix.find(reads[i].Seq)
		}
		for i := range reads {
			out[i] = ix.format(nil, opt, reads, &hits, i)
		}
	}

	for i := range reads {
		encode(reads[i].Seq)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range reads {
		reads[i].SAM = &text{engine: e, data: out[i]}
		e.texts++
	}
	e.alignments++
	return nil
}

type hit struct {
	contig  int
	pos     int
	reverse bool
}

func (h hit) mapped() bool {
	return h.contig >= 0
}

var complement = [256]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N', 'a': 'T', 'c': 'G', 'g': 'C', 't': 'A', 'n': 'N'}

func reverseComplement(seq []byte) []byte {
	rc := make([]byte, len(seq))
	for i, b := range seq {
		c := complement[b]
		if c == 0 {
			c = 'N'
		}
		rc[len(seq)-1-i] = c
	}
	return rc
}

func (idx *index) find(seq []byte) hit {
	if len(seq) == 0 {
		return hit{contig: -1}
	}
	upper := bytes.ToUpper(seq)
	rc := reverseComplement(upper)
	for i := range idx.contigs {
		if pos := bytes.Index(idx.contigs[i].Seq, upper); pos >= 0 {
			return hit{contig: i, pos: pos}
		}
		if pos := bytes.Index(idx.contigs[i].Seq, rc); pos >= 0 {
			return hit{contig: i, pos: pos, reverse: true}
		}
	}
	return hit{contig: -1}
}

func encode(seq []byte) {
	for i, b := range seq {
		switch b {
		case 'A', 'a':
			seq[i] = 0
		case 'C', 'c':
			seq[i] = 1
		case 'G', 'g':
			seq[i] = 2
		case 'T', 't':
			seq[i] = 3
		default:
			if b > 3 {
				seq[i] = 4
			}
		}
	}
}

func reverse(buf []byte) []byte {
	r := make([]byte, len(buf))
	for i, b := range buf {
		r[len(buf)-1-i] = b
	}
	return r
}

// placement returns the contig and 0-based position a read is
// reported at, which for an unmapped read with a mapped mate is the
// position of the mate.
func placement(self, mate hit) (int, int) {
	switch {
	case self.mapped():
		return self.contig, self.pos
	case mate.mapped():
		return mate.contig, mate.pos
	default:
		return -1, -1
	}
}

func (idx *index) format(out []byte, opt *native.Options, reads *[2]native.Read, hits *[2]hit, i int) []byte {
	r := &reads[i]
	self, mate := hits[i], hits[1-i]
	mateRead := &reads[1-i]

	flag := 0x1
	if i == 0 {
		flag |= 0x40
	} else {
		flag |= 0x80
	}
	if !self.mapped() {
		flag |= 0x4
	}
	if !mate.mapped() {
		flag |= 0x8
	}
	if self.mapped() && mate.mapped() && self.contig == mate.contig && self.reverse != mate.reverse {
		flag |= 0x2
	}
	if self.reverse {
		flag |= 0x10
	}
	if mate.reverse {
		flag |= 0x20
	}

	contig, pos := placement(self, mate)
	mateContig, matePos := placement(mate, self)

	out = append(out, r.Name...)
	out = append(out, '\t')
	out = strconv.AppendInt(out, int64(flag), 10)
	out = append(out, '\t')
	if contig < 0 {
		out = append(out, "*\t0\t0\t*\t*\t0\t0\t"...)
	} else {
		out = append(out, idx.contigs[contig].Name...)
		out = append(out, '\t')
		out = strconv.AppendInt(out, int64(pos+1), 10)
		if self.mapped() {
			out = append(out, "\t60\t"...)
			out = strconv.AppendInt(out, int64(len(r.Seq)), 10)
			out = append(out, "M\t"...)
		} else {
			out = append(out, "\t0\t*\t"...)
		}
		if mateContig == contig {
			out = append(out, "=\t"...)
		} else {
			out = append(out, idx.contigs[mateContig].Name...)
			out = append(out, '\t')
		}
		out = strconv.AppendInt(out, int64(matePos+1), 10)
		out = append(out, '\t')
		out = strconv.AppendInt(out, int64(templateLength(self, mate, len(r.Seq), len(mateRead.Seq), i)), 10)
		out = append(out, '\t')
	}

	seq, qual := r.Seq, r.Qual
	if self.reverse {
		seq, qual = reverseComplement(bytes.ToUpper(seq)), reverse(qual)
	}
	if len(seq) == 0 {
		out = append(out, '*')
	} else {
		out = append(out, seq...)
	}
	out = append(out, '\t')
	if len(qual) == 0 {
		out = append(out, '*')
	} else {
		out = append(out, qual...)
	}

	if self.mapped() {
		out = append(out, "\tNM:i:0\tMD:Z:"...)
		out = strconv.AppendInt(out, int64(len(r.Seq)), 10)
		out = append(out, "\tAS:i:"...)
		out = strconv.AppendInt(out, int64(len(r.Seq))*int64(opt.Match), 10)
		out = append(out, "\tXS:i:0"...)
	} else {
		out = append(out, "\tAS:i:0\tXS:i:0"...)
	}
	return append(out, '\n')
}

func templateLength(self, mate hit, selfLen, mateLen, i int) int {
	if !self.mapped() || !mate.mapped() || self.contig != mate.contig {
		return 0
	}
	left := min(self.pos, mate.pos)
	right := max(self.pos+selfLen, mate.pos+mateLen)
	tlen := right - left
	if self.pos > mate.pos || (self.pos == mate.pos && i == 1) {
		return -tlen
	}
	return tlen
}
