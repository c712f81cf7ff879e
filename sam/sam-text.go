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
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/exascience/elbwa/utils"
)

// ParseHeaderField parses one TAG:VALUE field of a header line.
func (sc *StringScanner) ParseHeaderField() (tag, value string) {
	if sc.err != nil {
		return
	}
	tag, ok := sc.readUntil(':')
	if !ok || (len(tag) != 2) {
		sc.setErr("invalid header field tag %q", tag)
		return "", ""
	}
	value, _ = sc.readUntil('\t')
	return tag, value
}

// ParseHeaderLine parses the fields of a header line, after its
// record code.
func (sc *StringScanner) ParseHeaderLine() utils.StringMap {
	if sc.err != nil {
		return nil
	}
	record := make(utils.StringMap)
	for sc.Len() > 0 {
		tag, value := sc.ParseHeaderField()
		if sc.err != nil {
			break
		}
		if !record.SetUniqueEntry(tag, value) {
			sc.setErr("duplicate field tag %v in a SAM header line", tag)
			break
		}
	}
	return record
}

// ParseHeader parses the header section at the start of the given
// reader, and stops at the first line that does not start with '@'.
func ParseHeader(reader *bufio.Reader) (hdr *Header, lines int, err error) {
	hdr = NewHeader()
	var sc StringScanner
	for first := true; ; first = false {
		switch data, err := reader.Peek(1); {
		case err == io.EOF:
			return hdr, lines, nil
		case err != nil:
			return hdr, lines, err
		case data[0] != '@':
			return hdr, lines, nil
		}
		bytes, err := reader.ReadSlice('\n')
		length := len(bytes)
		switch {
		case err == nil:
			length--
		case err != io.EOF:
			return hdr, lines, err
		}
		lines++
		if length < 4 {
			return hdr, lines, fmt.Errorf("truncated SAM header line %q", bytes[:length])
		}
		line := string(bytes[4:length])
		sc.Reset(line)
		switch string(bytes[0:4]) {
		case "@HD\t":
			if !first {
				return hdr, lines, errors.New("@HD line not in first line when parsing a SAM header")
			}
			hdr.HD = sc.ParseHeaderLine()
		case "@SQ\t":
			hdr.SQ = append(hdr.SQ, sc.ParseHeaderLine())
		case "@RG\t":
			hdr.RG = append(hdr.RG, sc.ParseHeaderLine())
		case "@PG\t":
			hdr.PG = append(hdr.PG, sc.ParseHeaderLine())
		case "@CO\t":
			hdr.CO = append(hdr.CO, line)
		default:
			code := string(bytes[0:3])
			if !IsHeaderUserTag(code) {
				return hdr, lines, fmt.Errorf("unknown SAM record type code %v", code)
			}
			if bytes[3] != '\t' {
				return hdr, lines, fmt.Errorf("header code %v not followed by a tab when parsing a SAM header", code)
			}
			hdr.AddUserRecord(code, sc.ParseHeaderLine())
		}
		if sc.err != nil {
			return hdr, lines, fmt.Errorf("%v, in SAM header line %v", sc.err, lines)
		}
	}
}

// FieldParser parses the value of an optional field.
type FieldParser func(*StringScanner) interface{}

// ParseChar parses an A-typed value.
func (sc *StringScanner) ParseChar() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readByteUntil('\t')
	return value
}

// ParseInteger parses an i-typed value.
func (sc *StringScanner) ParseInteger() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	val, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		sc.setErr("%v", err)
	}
	return int32(val)
}

// ParseFloat parses an f-typed value.
func (sc *StringScanner) ParseFloat() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		sc.setErr("%v", err)
	}
	return float32(val)
}

// ParseString parses a Z-typed value.
func (sc *StringScanner) ParseString() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	return value
}

// ParseByteArray parses an H-typed value.
func (sc *StringScanner) ParseByteArray() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	if len(value)%2 != 0 {
		sc.setErr("odd number of digits in hex array %v", value)
		return nil
	}
	result := make(ByteArray, 0, len(value)>>1)
	for i := 0; i < len(value); i += 2 {
		val, err := strconv.ParseUint(value[i:i+2], 16, 8)
		if err != nil {
			sc.setErr("%v", err)
			return nil
		}
		result = append(result, byte(val))
	}
	return result
}

func parseNumericEntries[T any](sc *StringScanner, parse func(string) (T, error)) []T {
	var result []T
	for {
		entry, sep := sc.readUntil2(',', '\t')
		val, err := parse(entry)
		if err != nil {
			sc.setErr("%v", err)
			return nil
		}
		result = append(result, val)
		if sep != ',' {
			return result
		}
	}
}

func intParser[T int8 | int16 | int32](bitSize int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseInt(s, 10, bitSize)
		return T(v), err
	}
}

func uintParser[T uint8 | uint16 | uint32](bitSize int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 10, bitSize)
		return T(v), err
	}
}

// ParseNumericArray parses a B-typed value.
func (sc *StringScanner) ParseNumericArray() interface{} {
	if sc.err != nil {
		return nil
	}
	ntype, ok := sc.readByteUntil(',')
	if !ok {
		sc.setErr("missing entry in numeric array")
		return nil
	}
	switch ntype {
	case 'c':
		return parseNumericEntries(sc, intParser[int8](8))
	case 'C':
		return parseNumericEntries(sc, uintParser[uint8](8))
	case 's':
		return parseNumericEntries(sc, intParser[int16](16))
	case 'S':
		return parseNumericEntries(sc, uintParser[uint16](16))
	case 'i':
		return parseNumericEntries(sc, intParser[int32](32))
	case 'I':
		return parseNumericEntries(sc, uintParser[uint32](32))
	case 'f':
		return parseNumericEntries(sc, func(s string) (float32, error) {
			v, err := strconv.ParseFloat(s, 32)
			return float32(v), err
		})
	default:
		sc.setErr("invalid numeric array type %q", ntype)
		return nil
	}
}

var optionalFieldParseTable = map[byte]FieldParser{
	'A': (*StringScanner).ParseChar,
	'i': (*StringScanner).ParseInteger,
	'f': (*StringScanner).ParseFloat,
	'Z': (*StringScanner).ParseString,
	'H': (*StringScanner).ParseByteArray,
	'B': (*StringScanner).ParseNumericArray,
}

// ParseOptionalField parses one TAG:TYPE:VALUE field.
func (sc *StringScanner) ParseOptionalField() (tag utils.Symbol, value interface{}) {
	if sc.err != nil {
		return nil, nil
	}
	tagname, ok := sc.readUntil(':')
	if !ok || (len(tagname) != 2) {
		sc.setErr("invalid field tag %q in SAM alignment line", tagname)
		return nil, nil
	}
	typebyte, ok := sc.readByteUntil(':')
	if !ok {
		sc.setErr("invalid field type in SAM alignment line")
		return nil, nil
	}
	parser := optionalFieldParseTable[typebyte]
	if parser == nil {
		sc.setErr("unknown field type %q in SAM alignment line", typebyte)
		return nil, nil
	}
	return utils.Intern(tagname), parser(sc)
}

func (sc *StringScanner) doString() string {
	if sc.err != nil {
		return ""
	}
	value, ok := sc.readUntil('\t')
	if !ok {
		sc.setErr("missing tabulator in SAM alignment line")
		return ""
	}
	return value
}

func (sc *StringScanner) doInt32() int32 {
	if sc.err != nil {
		return 0
	}
	value, err := strconv.ParseInt(sc.doString(), 10, 32)
	if err != nil {
		sc.setErr("%v", err)
	}
	return int32(value)
}

func (sc *StringScanner) doUint(bitSize int) uint64 {
	if sc.err != nil {
		return 0
	}
	value, err := strconv.ParseUint(sc.doString(), 10, bitSize)
	if err != nil {
		sc.setErr("%v", err)
	}
	return value
}

// ParseAlignment parses the line the scanner was reset with. On
// failure, the result is incomplete and Err returns the cause.
func (sc *StringScanner) ParseAlignment() *Alignment {
	aln := NewAlignment()

	aln.QNAME = sc.doString()
	aln.FLAG = uint16(sc.doUint(16))
	aln.RNAME = sc.doString()
	aln.POS = sc.doInt32()
	aln.MAPQ = byte(sc.doUint(8))
	aln.CIGAR = sc.doString()
	aln.RNEXT = sc.doString()
	aln.PNEXT = sc.doInt32()
	aln.TLEN = sc.doInt32()
	aln.SEQ = sc.doString()
	if sc.err == nil {
		aln.QUAL, _ = sc.readUntil('\t')
	}

	for sc.Len() > 0 {
		tag, value := sc.ParseOptionalField()
		if sc.err != nil {
			break
		}
		aln.TAGS.Set(tag, value)
	}

	return aln
}

// Leading tags per header record code; remaining tags follow in
// lexicographic order.
var headerTagOrder = map[string][]string{
	"@HD": {"VN", "SO", "GO"},
	"@SQ": {"SN", "LN"},
	"@RG": {"ID"},
	"@PG": {"ID", "PN"},
}

// FormatHeaderLine appends one header line, including the final
// newline.
func FormatHeaderLine(out []byte, code string, record utils.StringMap) []byte {
	out = append(out, code...)
	for _, key := range record.OrderedKeys(headerTagOrder[code]...) {
		out = append(out, '\t')
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, record[key]...)
	}
	return append(out, '\n')
}

// Format appends the textual representation of the header. Every
// line, including the last one, ends with a newline.
func (hdr *Header) Format(out []byte) []byte {
	if hdr.HD != nil {
		out = FormatHeaderLine(out, "@HD", hdr.HD)
	}
	for _, record := range hdr.SQ {
		out = FormatHeaderLine(out, "@SQ", record)
	}
	for _, record := range hdr.RG {
		out = FormatHeaderLine(out, "@RG", record)
	}
	for _, record := range hdr.PG {
		out = FormatHeaderLine(out, "@PG", record)
	}
	for _, comment := range hdr.CO {
		out = append(append(append(out, "@CO\t"...), comment...), '\n')
	}
	codes := make([]string, 0, len(hdr.UserRecords))
	for code := range hdr.UserRecords {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		for _, record := range hdr.UserRecords[code] {
			out = FormatHeaderLine(out, code, record)
		}
	}
	return out
}

func appendArray[T any](out []byte, prefix string, values []T, appendValue func([]byte, T) []byte) []byte {
	out = append(out, prefix...)
	for _, v := range values {
		out = appendValue(append(out, ','), v)
	}
	return out
}

// FormatTag appends one optional field, including the leading tab.
func FormatTag(out []byte, tag utils.Symbol, value interface{}) ([]byte, error) {
	out = append(out, '\t')
	out = append(out, *tag...)

	appendInt := func(out []byte, v int64) []byte { return strconv.AppendInt(out, v, 10) }
	appendUint := func(out []byte, v uint64) []byte { return strconv.AppendUint(out, v, 10) }

	switch val := value.(type) {
	case byte:
		out = append(append(out, ":A:"...), val)
	case int32:
		out = strconv.AppendInt(append(out, ":i:"...), int64(val), 10)
	case float32:
		out = strconv.AppendFloat(append(out, ":f:"...), float64(val), 'g', -1, 32)
	case string:
		out = append(append(out, ":Z:"...), val...)
	case ByteArray:
		out = append(out, ":H:"...)
		for _, b := range val {
			if b < 16 {
				out = append(out, '0')
			}
			out = strconv.AppendUint(out, uint64(b), 16)
		}
	case []int8:
		out = appendArray(out, ":B:c", val, func(out []byte, v int8) []byte { return appendInt(out, int64(v)) })
	case []uint8:
		out = appendArray(out, ":B:C", val, func(out []byte, v uint8) []byte { return appendUint(out, uint64(v)) })
	case []int16:
		out = appendArray(out, ":B:s", val, func(out []byte, v int16) []byte { return appendInt(out, int64(v)) })
	case []uint16:
		out = appendArray(out, ":B:S", val, func(out []byte, v uint16) []byte { return appendUint(out, uint64(v)) })
	case []int32:
		out = appendArray(out, ":B:i", val, func(out []byte, v int32) []byte { return appendInt(out, int64(v)) })
	case []uint32:
		out = appendArray(out, ":B:I", val, func(out []byte, v uint32) []byte { return appendUint(out, uint64(v)) })
	case []float32:
		out = appendArray(out, ":B:f", val, func(out []byte, v float32) []byte {
			return strconv.AppendFloat(out, float64(v), 'g', -1, 32)
		})
	default:
		return nil, fmt.Errorf("unknown SAM alignment TAG type %T", value)
	}

	return out, nil
}

// Format appends the SAM line of the alignment, including the final
// newline.
func (aln *Alignment) Format(out []byte) ([]byte, error) {
	out = append(append(out, aln.QNAME...), '\t')
	out = append(strconv.AppendUint(out, uint64(aln.FLAG), 10), '\t')
	out = append(append(out, aln.RNAME...), '\t')
	out = append(strconv.AppendInt(out, int64(aln.POS), 10), '\t')
	out = append(strconv.AppendUint(out, uint64(aln.MAPQ), 10), '\t')
	out = append(append(out, aln.CIGAR...), '\t')
	out = append(append(out, aln.RNEXT...), '\t')
	out = append(strconv.AppendInt(out, int64(aln.PNEXT), 10), '\t')
	out = append(strconv.AppendInt(out, int64(aln.TLEN), 10), '\t')
	out = append(append(out, aln.SEQ...), '\t')
	out = append(out, aln.QUAL...)

	var err error
	for _, entry := range aln.TAGS {
		if out, err = FormatTag(out, entry.Key, entry.Value); err != nil {
			return nil, err
		}
	}

	return append(out, '\n'), nil
}
