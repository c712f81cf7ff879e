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
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elbwa/sam"
)

// A Dictionary maps the contig names of SAM lines to reference ids.
//
// Decoding reuses a single scanner and records which contigs were
// referenced, so DecodeLine serializes its callers. The lock is held
// for one line at a time.
type Dictionary struct {
	names   []string
	lengths []int64
	refids  map[string]int32

	mu         sync.Mutex
	scanner    sam.StringScanner
	referenced bitset.BitSet
}

// NewDictionary builds a dictionary from the @SQ records of hdr. The
// reference id of a contig is the position of its record.
func NewDictionary(hdr *sam.Header) (*Dictionary, error) {
	d := &Dictionary{
		names:   make([]string, 0, len(hdr.SQ)),
		lengths: make([]int64, 0, len(hdr.SQ)),
		refids:  make(map[string]int32, len(hdr.SQ)),
	}
	for i, sq := range hdr.SQ {
		name, err := sam.SQ_SN(sq)
		if err != nil {
			return nil, err
		}
		length, err := sam.SQ_LN(sq)
		if err != nil {
			return nil, err
		}
		if _, found := d.refids[name]; found {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateContig, name)
		}
		d.refids[name] = int32(i)
		d.names = append(d.names, name)
		d.lengths = append(d.lengths, length)
	}
	return d, nil
}

// ParseDictionary builds a dictionary from SAM header text, such as
// the result of Reference.HeaderText.
func ParseDictionary(text string) (*Dictionary, error) {
	hdr, _, err := sam.ParseHeader(bufio.NewReader(strings.NewReader(text)))
	if err != nil {
		return nil, err
	}
	return NewDictionary(hdr)
}

// Len returns the number of contigs.
func (d *Dictionary) Len() int { return len(d.names) }

// RefID returns the reference id of the named contig.
func (d *Dictionary) RefID(name string) (int32, bool) {
	refid, ok := d.refids[name]
	return refid, ok
}

// Name returns the contig name of a reference id.
func (d *Dictionary) Name(refid int32) string { return d.names[refid] }

// Length returns the contig length of a reference id.
func (d *Dictionary) Length(refid int32) int64 { return d.lengths[refid] }

// Referenced reports whether a decoded alignment was placed on the
// contig with the given reference id.
func (d *Dictionary) Referenced(refid int32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.referenced.Test(uint(refid))
}

func (d *Dictionary) resolve(name string) (int32, error) {
	if name == "*" {
		return -1, nil
	}
	refid, ok := d.refids[name]
	if !ok {
		return -1, fmt.Errorf("%w: %v", ErrUnknownContig, name)
	}
	return refid, nil
}

// DecodeLine parses one SAM alignment line, without the newline, and
// sets its reference ids. The result does not alias line. Errors are
// of type *RecordParseError.
func (d *Dictionary) DecodeLine(line []byte) (*sam.Alignment, error) {
	text := string(line)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.scanner.Reset(text)
	aln := d.scanner.ParseAlignment()
	if err := d.scanner.Err(); err != nil {
		return nil, &RecordParseError{Line: text, Err: err}
	}
	if err := aln.Validate(); err != nil {
		return nil, &RecordParseError{Line: text, Err: err}
	}

	refid, err := d.resolve(aln.RNAME)
	if err != nil {
		return nil, &RecordParseError{Line: text, Err: err}
	}
	nextRefID := refid
	if aln.RNEXT != "=" {
		if nextRefID, err = d.resolve(aln.RNEXT); err != nil {
			return nil, &RecordParseError{Line: text, Err: err}
		}
	}

	aln.SetRefID(refid)
	aln.SetNextRefID(nextRefID)
	if refid >= 0 {
		d.referenced.Set(uint(refid))
	}
	return aln, nil
}
