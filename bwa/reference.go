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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exascience/elbwa/internal"
	"github.com/exascience/elbwa/native"
	"github.com/exascience/elbwa/sam"
)

// A Reference is a loaded BWA index together with the ordered names
// and lengths of its contigs. The position of a contig in this order
// is its reference id.
//
// The native index is read-only and shared by all alignment calls.
// Close releases it once no call is using it anymore.
type Reference struct {
	path    string
	id      uuid.UUID
	engine  native.Engine
	logger  *Logger
	metrics MetricsRecorder

	names   []string
	lengths []int64
	refids  map[string]int32

	mu  sync.RWMutex
	idx native.Index
}

// OpenReference loads the BWA index at path, which is the path the
// index was built from (for example hg38.fa with hg38.fa.bwt next to
// it). Errors are of type *ReferenceLoadError.
func OpenReference(path string, opts ...Option) (ref *Reference, err error) {
	o := new(options).apply(opts)
	start := time.Now()
	defer func() {
		o.metrics.Observe(OperationLoadReference, err == nil, time.Since(start))
	}()

	idx, err := o.engine.LoadIndex(path)
	if err != nil {
		err = &ReferenceLoadError{Path: path, Err: err}
		o.logger.LogReferenceLoad(logPath(path), "", 0, err)
		return nil, err
	}

	n := idx.NumContigs()
	ref = &Reference{
		path:    path,
		id:      uuid.New(),
		engine:  o.engine,
		metrics: o.metrics,
		names:   make([]string, n),
		lengths: make([]int64, n),
		refids:  make(map[string]int32, n),
		idx:     idx,
	}
	for i := 0; i < n; i++ {
		name, length := idx.Contig(i)
		ref.names[i] = name
		ref.lengths[i] = length
		if _, found := ref.refids[name]; !found {
			ref.refids[name] = int32(i)
		}
	}
	ref.logger = o.logger.WithReference(ref.id.String())
	o.logger.LogReferenceLoad(logPath(path), ref.id.String(), n, nil)
	return ref, nil
}

func logPath(path string) string {
	if full, err := internal.FullPathname(path); err == nil {
		return full
	}
	return path
}

// Path returns the path the index was loaded from.
func (ref *Reference) Path() string { return ref.path }

// ID returns an identifier unique to this loaded instance.
func (ref *Reference) ID() uuid.UUID { return ref.id }

// NumContigs returns the number of contigs.
func (ref *Reference) NumContigs() int { return len(ref.names) }

// ContigNames returns the contig names in reference id order.
func (ref *Reference) ContigNames() []string {
	return append([]string(nil), ref.names...)
}

// ContigLengths returns the contig lengths in reference id order.
func (ref *Reference) ContigLengths() []int64 {
	return append([]int64(nil), ref.lengths...)
}

// ContigID returns the reference id of the named contig.
func (ref *Reference) ContigID(name string) (int32, bool) {
	refid, ok := ref.refids[name]
	return refid, ok
}

// PopulateHeader appends one @SQ record per contig to hdr, in
// reference id order.
func (ref *Reference) PopulateHeader(hdr *sam.Header) {
	for i, name := range ref.names {
		hdr.AddSQ(name, ref.lengths[i])
	}
}

// Header returns a new header with one @SQ record per contig.
func (ref *Reference) Header() *sam.Header {
	hdr := sam.NewHeader()
	ref.PopulateHeader(hdr)
	return hdr
}

// HeaderText returns the SAM text of Header, without the final
// newline.
func (ref *Reference) HeaderText() string {
	return string(bytes.TrimSuffix(ref.Header().Format(nil), []byte{'\n'}))
}

// alignPair runs the native alignment of one read pair. It holds a
// read lock so that Close waits for it.
func (ref *Reference) alignPair(opt *native.Options, pes *[4]native.PairStat, reads *[2]native.Read) error {
	ref.mu.RLock()
	defer ref.mu.RUnlock()
	if ref.idx == nil {
		return ErrClosed
	}
	if err := ref.engine.AlignPair(opt, ref.idx, pes, reads); err != nil {
		return fmt.Errorf("native alignment: %w", err)
	}
	return nil
}

// Close waits for in-flight alignment calls and releases the native
// index. It returns ErrClosed if the reference was already closed.
func (ref *Reference) Close() error {
	ref.mu.Lock()
	defer ref.mu.Unlock()
	if ref.idx == nil {
		return ErrClosed
	}
	ref.idx.Destroy()
	ref.idx = nil
	ref.logger.Info("reference closed", "path", ref.path)
	return nil
}

func (ref *Reference) closed() bool {
	ref.mu.RLock()
	defer ref.mu.RUnlock()
	return ref.idx == nil
}
