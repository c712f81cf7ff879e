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

// Package sam is a library for representing the SAM text records that
// a short-read aligner reports, and for parsing them back into
// structured form.
//
// A Header holds @SQ, @RG, @PG and @CO records as StringMaps. An
// Alignment holds the eleven mandatory SAM fields plus optional
// fields, and a small set of temporary values (such as the numeric
// reference id of RNAME) that are not part of the SAM text itself.
//
// Lines are parsed with a StringScanner, which is reusable but not
// safe for concurrent use.
package sam
