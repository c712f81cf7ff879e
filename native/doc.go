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

// Package native is the boundary between Go and a short-read aligner
// implemented in C.
//
// An Engine provides exactly the native operations the bwa package
// relies on: default option initialization, scoring matrix
// construction, index load and destroy, and paired-end alignment of a
// single read pair. The memory contracts of those operations are part
// of the interface:
//
//   - AlignPair may rewrite the Seq and Qual buffers of its reads in
//     place, so callers pass copies.
//   - AlignPair stores native-allocated SAM text in each read's SAM
//     slot. The receiver owns that Text and must call Free exactly
//     once; Bytes must not be used after Free.
//   - An Index is read-only after LoadIndex and may be shared by
//     concurrent AlignPair calls. Destroy must not run concurrently
//     with any of them.
//
// With the build tag bwa (and cgo enabled), Default returns an engine
// backed by libbwa, located through the usual CGO_CFLAGS and
// CGO_LDFLAGS. The library must export mem_process_seq_pe, as the
// 10x Genomics fork of BWA does. Without the tag, Default returns an
// engine that reports ErrUnavailable for index loading and alignment.
package native
