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
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a closed Reference or Aligner is used.
	ErrClosed = errors.New("bwa: closed")

	// ErrUnknownContig is returned when a SAM line refers to a contig
	// that is not in the dictionary.
	ErrUnknownContig = errors.New("unknown contig")

	// ErrDuplicateContig is returned when a header lists the same
	// contig name twice.
	ErrDuplicateContig = errors.New("duplicate contig")
)

// ReferenceLoadError indicates that a BWA index could not be loaded.
//
// The cause is one of native.ErrIndexMissing, native.ErrIndexLoad or
// native.ErrUnavailable, and can be accessed via errors.Unwrap.
type ReferenceLoadError struct {
	Path string
	Err  error
}

func (e *ReferenceLoadError) Error() string {
	return fmt.Sprintf("cannot load BWA index %v: %v", e.Path, e.Err)
}

func (e *ReferenceLoadError) Unwrap() error { return e.Err }

// RecordParseError indicates that a line of BWA output could not be
// decoded into a SAM alignment.
type RecordParseError struct {
	Line string
	Err  error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("cannot parse SAM line %q: %v", e.Line, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }
