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

//go:build cgo && bwa

package native

/*
#cgo LDFLAGS: -lbwa -lz -lm -lpthread
#include <stdlib.h>
#include <string.h>
#include "bwa.h"
#include "bwamem.h"

void mem_process_seq_pe(const mem_opt_t *opt, const bwt_t *bwt, const bntseq_t *bns, const uint8_t *pac, bseq1_t *seqs, const mem_pestat_t pes[4]);

static int elbwa_num_contigs(const bwaidx_t *idx) { return idx->bns->n_seqs; }
static const char *elbwa_contig_name(const bwaidx_t *idx, int i) { return idx->bns->anns[i].name; }
static int64_t elbwa_contig_len(const bwaidx_t *idx, int i) { return idx->bns->anns[i].len; }
*/
import "C"

import (
	"runtime"
	"sync"
	"unsafe"
)

type bwaEngine struct{}

// Default returns the engine backed by the linked BWA library.
func Default() Engine {
	return bwaEngine{}
}

func optionsFromC(copt *C.mem_opt_t) (opt Options) {
	opt.Match = int32(copt.a)
	opt.Mismatch = int32(copt.b)
	opt.GapOpenDel = int32(copt.o_del)
	opt.GapExtendDel = int32(copt.e_del)
	opt.GapOpenIns = int32(copt.o_ins)
	opt.GapExtendIns = int32(copt.e_ins)
	opt.PenUnpaired = int32(copt.pen_unpaired)
	opt.PenClip5 = int32(copt.pen_clip5)
	opt.PenClip3 = int32(copt.pen_clip3)
	opt.BandWidth = int32(copt.w)
	opt.ZDrop = int32(copt.zdrop)
	opt.MinScore = int32(copt.T)
	opt.Flag = int32(copt.flag)
	opt.MinSeedLen = int32(copt.min_seed_len)
	opt.MaxOcc = int32(copt.max_occ)
	opt.MaxIns = int32(copt.max_ins)
	opt.MaxMateSW = int32(copt.max_matesw)
	for i := range opt.Mat {
		opt.Mat[i] = int8(copt.mat[i])
	}
	return opt
}

func (opt *Options) toC(copt *C.mem_opt_t) {
	copt.a = C.int(opt.Match)
	copt.b = C.int(opt.Mismatch)
	copt.o_del = C.int(opt.GapOpenDel)
	copt.e_del = C.int(opt.GapExtendDel)
	copt.o_ins = C.int(opt.GapOpenIns)
	copt.e_ins = C.int(opt.GapExtendIns)
	copt.pen_unpaired = C.int(opt.PenUnpaired)
	copt.pen_clip5 = C.int(opt.PenClip5)
	copt.pen_clip3 = C.int(opt.PenClip3)
	copt.w = C.int(opt.BandWidth)
	copt.zdrop = C.int(opt.ZDrop)
	copt.T = C.int(opt.MinScore)
	copt.flag = C.int(opt.Flag)
	copt.min_seed_len = C.int(opt.MinSeedLen)
	copt.max_occ = C.int(opt.MaxOcc)
	copt.max_ins = C.int(opt.MaxIns)
	copt.max_matesw = C.int(opt.MaxMateSW)
	for i, v := range opt.Mat {
		copt.mat[i] = C.int8_t(v)
	}
}

// newCOptions allocates native options initialized by mem_opt_init,
// with the mirrored fields taken from opt.
func newCOptions(opt *Options) (*C.mem_opt_t, error) {
	copt := C.mem_opt_init()
	if copt == nil {
		return nil, ErrAllocation
	}
	opt.toC(copt)
	return copt, nil
}

func freeCOptions(copt *C.mem_opt_t) {
	C.free(unsafe.Pointer(copt))
}

func (bwaEngine) DefaultOptions() (Options, error) {
	copt := C.mem_opt_init()
	if copt == nil {
		return Options{}, ErrAllocation
	}
	defer freeCOptions(copt)
	return optionsFromC(copt), nil
}

func (bwaEngine) FillScoringMatrix(match, mismatch int32, mat *[25]int8) {
	var cmat [25]C.int8_t
	C.bwa_fill_scmat(C.int(match), C.int(mismatch), &cmat[0])
	for i, v := range cmat {
		mat[i] = int8(v)
	}
}

type bwaIndex struct {
	once sync.Once
	idx  *C.bwaidx_t
}

func (bi *bwaIndex) NumContigs() int {
	return int(C.elbwa_num_contigs(bi.idx))
}

func (bi *bwaIndex) Contig(i int) (string, int64) {
	return C.GoString(C.elbwa_contig_name(bi.idx, C.int(i))), int64(C.elbwa_contig_len(bi.idx, C.int(i)))
}

func (bi *bwaIndex) Destroy() {
	bi.once.Do(func() {
		C.bwa_idx_destroy(bi.idx)
		bi.idx = nil
	})
}

func (bwaEngine) LoadIndex(path string) (Index, error) {
	if _, err := CheckIndex(path); err != nil {
		return nil, err
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	idx := C.bwa_idx_load(cpath, C.int(IndexAll))
	if idx == nil {
		return nil, ErrIndexLoad
	}
	return &bwaIndex{idx: idx}, nil
}

type bwaText struct {
	p     *C.char
	freed bool
}

func (t *bwaText) Bytes() []byte {
	if t.freed {
		panic("native: text used after free")
	}
	if t.p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(t.p)), int(C.strlen(t.p)))
}

func (t *bwaText) Free() {
	if t.freed {
		panic("native: text freed twice")
	}
	t.freed = true
	C.free(unsafe.Pointer(t.p))
	t.p = nil
}

func pinned(pinner *runtime.Pinner, buf []byte) *C.char {
	if len(buf) == 0 {
		return nil
	}
	pinner.Pin(&buf[0])
	return (*C.char)(unsafe.Pointer(&buf[0]))
}

func (bwaEngine) AlignPair(opt *Options, idx Index, pes *[4]PairStat, reads *[2]Read) error {
	bi, ok := idx.(*bwaIndex)
	if !ok || bi.idx == nil {
		return ErrForeignIndex
	}

	copt, err := newCOptions(opt)
	if err != nil {
		return err
	}
	defer freeCOptions(copt)

	var cpes [4]C.mem_pestat_t
	for i, pe := range pes {
		if pe.Failed {
			cpes[i].failed = 1
		}
		cpes[i].low = C.int(pe.Low)
		cpes[i].high = C.int(pe.High)
		cpes[i].avg = C.double(pe.Mean)
		cpes[i].std = C.double(pe.StdDev)
	}

	name := C.CString(reads[0].Name)
	defer C.free(unsafe.Pointer(name))

	var pinner runtime.Pinner
	defer pinner.Unpin()

	var seqs [2]C.bseq1_t
	for i := range reads {
		r := &reads[i]
		seqs[i].l_seq = C.int(len(r.Seq))
		seqs[i].id = C.int(r.ID)
		seqs[i].name = name
		seqs[i].seq = pinned(&pinner, r.Seq)
		seqs[i].qual = pinned(&pinner, r.Qual)
	}

	C.mem_process_seq_pe(copt, bi.idx.bwt, bi.idx.bns, bi.idx.pac, &seqs[0], &cpes[0])

	for i := range reads {
		reads[i].SAM = &bwaText{p: seqs[i].sam}
	}
	return nil
}
