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

package sam

import (
	"fmt"
	"strconv"
	"sync"
	"unicode"
)

// CigarOperations lists the valid CIGAR operation characters.
const CigarOperations = "MmIiDdNnSsHhPpXx="

var cigarOperationsTable = make(map[byte]byte, len(CigarOperations))

func init() {
	for _, c := range CigarOperations {
		cigarOperationsTable[byte(c)] = byte(unicode.ToUpper(rune(c)))
	}
}

func isDigit(char byte) bool { return ('0' <= char) && (char <= '9') }

// CigarOperation is one length/operation pair of a CIGAR string.
type CigarOperation struct {
	Length    int32
	Operation byte
}

func newCigarOperation(cigar string, i int) (op CigarOperation, j int, err error) {
	for j = i; j < len(cigar); j++ {
		if char := cigar[j]; !isDigit(char) {
			length, nerr := strconv.ParseInt(cigar[i:j], 10, 32)
			if nerr != nil {
				return op, j, nerr
			}
			operation := cigarOperationsTable[char]
			if operation == 0 {
				return op, j, fmt.Errorf("invalid CIGAR operation %q", char)
			}
			return CigarOperation{int32(length), operation}, j + 1, nil
		}
	}
	return op, j, fmt.Errorf("missing CIGAR operation after length %v", cigar[i:])
}

// Parsed CIGAR strings are shared between alignments. Once the cache
// holds cigarCacheLimit entries, new strings are parsed but no longer
// added.
const cigarCacheLimit = 1 << 16

var (
	cigarSliceCache      = map[string][]CigarOperation{"*": {}}
	cigarSliceCacheMutex sync.RWMutex
)

func slowScanCigarString(cigar string) ([]CigarOperation, error) {
	var slice []CigarOperation
	for i := 0; i < len(cigar); {
		op, j, err := newCigarOperation(cigar, i)
		if err != nil {
			return nil, fmt.Errorf("%v, while scanning CIGAR string %v", err, cigar)
		}
		slice = append(slice, op)
		i = j
	}
	cigarSliceCacheMutex.Lock()
	if value, found := cigarSliceCache[cigar]; found {
		slice = value
	} else if len(cigarSliceCache) < cigarCacheLimit {
		cigarSliceCache[cigar] = slice
	}
	cigarSliceCacheMutex.Unlock()
	return slice, nil
}

// ScanCigarString parses a CIGAR string. The result is shared and
// must not be modified.
func ScanCigarString(cigar string) ([]CigarOperation, error) {
	cigarSliceCacheMutex.RLock()
	value, found := cigarSliceCache[cigar]
	cigarSliceCacheMutex.RUnlock()
	if found {
		return value, nil
	}
	return slowScanCigarString(cigar)
}

func operatorConsumesReadBases(operator byte) bool {
	switch operator {
	case 'M', 'I', 'S', '=', 'X':
		return true
	default:
		return false
	}
}

func operatorConsumesReferenceBases(operator byte) bool {
	switch operator {
	case 'M', 'D', 'N', '=', 'X':
		return true
	default:
		return false
	}
}

// ReferenceLength sums the lengths of all CIGAR operations that
// consume reference bases.
func ReferenceLength(cigars []CigarOperation) (length int32) {
	for _, op := range cigars {
		if operatorConsumesReferenceBases(op.Operation) {
			length += op.Length
		}
	}
	return
}

// ReadLength sums the lengths of all CIGAR operations that consume
// read bases.
func ReadLength(cigars []CigarOperation) (length int32) {
	for _, op := range cigars {
		if operatorConsumesReadBases(op.Operation) {
			length += op.Length
		}
	}
	return
}

// End returns the 0-based exclusive end of the alignment on the
// reference. For unmapped alignments End returns Pos()+1, as htslib
// does for records without reference-consuming operations.
func (aln *Alignment) End() (int32, error) {
	cigars, err := ScanCigarString(aln.CIGAR)
	if err != nil {
		return 0, err
	}
	length := ReferenceLength(cigars)
	if length == 0 {
		length = 1
	}
	return aln.Pos() + length, nil
}

// Validate checks the mandatory fields for consistency: positions are
// not negative, the CIGAR string is well formed, and the number of
// read bases it covers matches SEQ, which in turn matches QUAL. An
// unavailable SEQ or CIGAR ("*") is not checked against the other.
func (aln *Alignment) Validate() error {
	if aln.POS < 0 {
		return fmt.Errorf("negative POS %v", aln.POS)
	}
	if aln.PNEXT < 0 {
		return fmt.Errorf("negative PNEXT %v", aln.PNEXT)
	}
	if aln.CIGAR == "" {
		return fmt.Errorf("empty CIGAR string")
	}
	cigars, err := ScanCigarString(aln.CIGAR)
	if err != nil {
		return err
	}
	if aln.SEQ == "*" {
		if aln.QUAL != "*" {
			return fmt.Errorf("QUAL %q without SEQ", aln.QUAL)
		}
		return nil
	}
	if aln.CIGAR != "*" {
		if length := ReadLength(cigars); int(length) != len(aln.SEQ) {
			return fmt.Errorf("CIGAR string %v covers %v read bases, but SEQ has %v", aln.CIGAR, length, len(aln.SEQ))
		}
	}
	if aln.QUAL != "*" && len(aln.QUAL) != len(aln.SEQ) {
		return fmt.Errorf("SEQ has %v bases, but QUAL has %v", len(aln.SEQ), len(aln.QUAL))
	}
	return nil
}

// IsSplit reports whether this alignment is one part of a chimeric
// alignment, which BWA-MEM reports through the SA optional field.
func (aln *Alignment) IsSplit() bool {
	_, found := aln.Tag("SA")
	return found
}
