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
	"errors"
	"log"
	"strconv"

	"github.com/exascience/elbwa/utils"
)

const (
	FileFormatVersion = "1.6"
	FileFormatDate    = "28 Nov 2019"
)

// IsHeaderUserTag reports whether a header record code is a user
// defined one, i.e. contains a lower case letter.
func IsHeaderUserTag(code string) bool {
	for _, c := range code {
		if ('a' <= c) && (c <= 'z') {
			return true
		}
	}
	return false
}

// Header represents the header section of a SAM file.
//
// The order of the SQ records defines the numeric reference ids of
// the contigs: the first @SQ record is reference id 0, and so on.
type Header struct {
	HD          utils.StringMap
	SQ, RG, PG  []utils.StringMap
	CO          []string
	UserRecords map[string][]utils.StringMap
}

// NewHeader returns an empty header. It has no @HD record, which is
// how BWA-MEM reports its own header as well.
func NewHeader() *Header { return &Header{} }

// NewSQ returns an @SQ record for a contig with the given name and
// length.
func NewSQ(name string, length int64) utils.StringMap {
	return utils.StringMap{
		"SN": name,
		"LN": strconv.FormatInt(length, 10),
	}
}

// SQ_SN returns the contig name of an @SQ record.
func SQ_SN(record utils.StringMap) (string, error) {
	sn, found := record["SN"]
	if !found {
		return "", errors.New("SN entry in a SQ header line missing")
	}
	return sn, nil
}

// SQ_LN returns the contig length of an @SQ record.
func SQ_LN(record utils.StringMap) (int64, error) {
	ln, found := record["LN"]
	if !found {
		return 0, errors.New("LN entry in a SQ header line missing")
	}
	return strconv.ParseInt(ln, 10, 64)
}

// AddSQ appends an @SQ record for the given contig.
func (hdr *Header) AddSQ(name string, length int64) {
	hdr.SQ = append(hdr.SQ, NewSQ(name, length))
}

// EnsureHD returns the @HD record, creating it if necessary.
func (hdr *Header) EnsureHD() utils.StringMap {
	if hdr.HD == nil {
		hdr.HD = utils.StringMap{"VN": FileFormatVersion}
	}
	return hdr.HD
}

// AddUserRecord adds a header record with a user-defined code.
func (hdr *Header) AddUserRecord(code string, record utils.StringMap) {
	if hdr.UserRecords == nil {
		hdr.UserRecords = make(map[string][]utils.StringMap)
	}
	hdr.UserRecords[code] = append(hdr.UserRecords[code], record)
}

// Alignment represents one SAM alignment line.
//
// POS and PNEXT are the 1-based SAM coordinates, 0 when unavailable.
// Use Pos and NextPos for 0-based coordinates.
type Alignment struct {
	QNAME string
	FLAG  uint16
	RNAME string
	POS   int32
	MAPQ  byte
	CIGAR string
	RNEXT string
	PNEXT int32
	TLEN  int32
	SEQ   string
	QUAL  string
	TAGS  utils.SmallMap
	Temps utils.SmallMap
}

var (
	// REFID is the temporary key for the reference id of RNAME.
	REFID = utils.Intern("REFID")

	// NEXTREFID is the temporary key for the reference id of RNEXT.
	NEXTREFID = utils.Intern("NEXTREFID")
)

// NewAlignment allocates an empty Alignment.
func NewAlignment() *Alignment {
	return &Alignment{
		TAGS:  make(utils.SmallMap, 0, 8),
		Temps: make(utils.SmallMap, 0, 2),
	}
}

func (aln *Alignment) refid(key utils.Symbol) int32 {
	refid, ok := aln.Temps.Get(key)
	if !ok {
		log.Panicf("%v in SAM alignment %v not set (decode the alignment through a dictionary)", *key, aln.QNAME)
	}
	return refid.(int32)
}

// RefID returns the numeric reference id of RNAME, or -1 if the
// alignment is unplaced.
func (aln *Alignment) RefID() int32 { return aln.refid(REFID) }

// SetRefID sets the numeric reference id of RNAME.
func (aln *Alignment) SetRefID(refid int32) { aln.Temps.Set(REFID, refid) }

// NextRefID returns the numeric reference id of RNEXT, or -1 if the
// mate is unplaced.
func (aln *Alignment) NextRefID() int32 { return aln.refid(NEXTREFID) }

// SetNextRefID sets the numeric reference id of RNEXT.
func (aln *Alignment) SetNextRefID(refid int32) { aln.Temps.Set(NEXTREFID, refid) }

// Pos returns the 0-based leftmost mapping position, or -1.
func (aln *Alignment) Pos() int32 { return aln.POS - 1 }

// NextPos returns the 0-based mate position, or -1.
func (aln *Alignment) NextPos() int32 { return aln.PNEXT - 1 }

// Tag returns the value of an optional field.
func (aln *Alignment) Tag(tag string) (interface{}, bool) {
	return aln.TAGS.Get(utils.Intern(tag))
}

// SAM flag bits.
const (
	Multiple      = 0x1
	Proper        = 0x2
	Unmapped      = 0x4
	NextUnmapped  = 0x8
	Reversed      = 0x10
	NextReversed  = 0x20
	First         = 0x40
	Last          = 0x80
	Secondary     = 0x100
	QCFailed      = 0x200
	Duplicate     = 0x400
	Supplementary = 0x800
)

func (aln *Alignment) IsMultiple() bool      { return (aln.FLAG & Multiple) != 0 }
func (aln *Alignment) IsProper() bool        { return (aln.FLAG & Proper) != 0 }
func (aln *Alignment) IsUnmapped() bool      { return (aln.FLAG & Unmapped) != 0 }
func (aln *Alignment) IsNextUnmapped() bool  { return (aln.FLAG & NextUnmapped) != 0 }
func (aln *Alignment) IsReversed() bool      { return (aln.FLAG & Reversed) != 0 }
func (aln *Alignment) IsNextReversed() bool  { return (aln.FLAG & NextReversed) != 0 }
func (aln *Alignment) IsFirst() bool         { return (aln.FLAG & First) != 0 }
func (aln *Alignment) IsLast() bool          { return (aln.FLAG & Last) != 0 }
func (aln *Alignment) IsSecondary() bool     { return (aln.FLAG & Secondary) != 0 }
func (aln *Alignment) IsQCFailed() bool      { return (aln.FLAG & QCFailed) != 0 }
func (aln *Alignment) IsDuplicate() bool     { return (aln.FLAG & Duplicate) != 0 }
func (aln *Alignment) IsSupplementary() bool { return (aln.FLAG & Supplementary) != 0 }

func (aln *Alignment) FlagEvery(flag uint16) bool  { return (aln.FLAG & flag) == flag }
func (aln *Alignment) FlagSome(flag uint16) bool   { return (aln.FLAG & flag) != 0 }
func (aln *Alignment) FlagNotAny(flag uint16) bool { return (aln.FLAG & flag) == 0 }

// ByteArray is the value type of H-typed optional fields.
type ByteArray []byte
