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

import "fmt"

/*
A StringScanner scans and parses ASCII strings that represent single
lines in SAM files.

The zero StringScanner is valid and empty. A StringScanner can be
reused for many lines by calling Reset, but it must not be used by
multiple goroutines at the same time.
*/
type StringScanner struct {
	index int
	field int
	data  string
	err   error
}

// Err returns the first error that occurred during scanning.
func (sc *StringScanner) Err() error {
	return sc.err
}

// Field returns the 1-based number of the tab-separated field the
// scanner is currently positioned in.
func (sc *StringScanner) Field() int {
	return sc.field + 1
}

// Reset reinitializes the scanner with the given line.
func (sc *StringScanner) Reset(s string) {
	sc.index = 0
	sc.field = 0
	sc.data = s
	sc.err = nil
}

// Len returns the number of characters left to scan, or 0 after an
// error.
func (sc *StringScanner) Len() int {
	if sc.err != nil {
		return 0
	}
	return len(sc.data) - sc.index
}

func (sc *StringScanner) setErr(format string, args ...interface{}) {
	if sc.err == nil {
		sc.err = fmt.Errorf("field %v: "+format, append([]interface{}{sc.Field()}, args...)...)
	}
}

// readByteUntil reads a single byte, which must be followed by c or
// by the end of the line.
func (sc *StringScanner) readByteUntil(c byte) (b byte, found bool) {
	if sc.err != nil {
		return 0, false
	}
	if sc.index >= len(sc.data) {
		sc.setErr("unexpected end of line")
		return 0, false
	}
	start := sc.index
	next := start + 1
	switch {
	case next >= len(sc.data):
		sc.index = len(sc.data)
		return sc.data[start], false
	case sc.data[next] != c:
		sc.setErr("unexpected character %q after %q", sc.data[next], sc.data[start])
		return 0, false
	default:
		sc.index = next + 1
		if c == '\t' {
			sc.field++
		}
		return sc.data[start], true
	}
}

// readUntil reads up to the next occurrence of c, or to the end of
// the line.
func (sc *StringScanner) readUntil(c byte) (s string, found bool) {
	if sc.err != nil {
		return "", false
	}
	start := sc.index
	for end := start; end < len(sc.data); end++ {
		if sc.data[end] == c {
			sc.index = end + 1
			if c == '\t' {
				sc.field++
			}
			return sc.data[start:end], true
		}
	}
	sc.index = len(sc.data)
	return sc.data[start:], false
}

// readUntil2 reads up to the next occurrence of either c1 or c2, and
// reports which one was found, or 0 at the end of the line.
func (sc *StringScanner) readUntil2(c1, c2 byte) (s string, b byte) {
	if sc.err != nil {
		return "", 0
	}
	start := sc.index
	for end := start; end < len(sc.data); end++ {
		if c := sc.data[end]; (c == c1) || (c == c2) {
			sc.index = end + 1
			if c == '\t' {
				sc.field++
			}
			return sc.data[start:end], c
		}
	}
	sc.index = len(sc.data)
	return sc.data[start:], 0
}
