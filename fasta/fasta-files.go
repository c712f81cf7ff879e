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

// Package fasta reads reference sequences from FASTA files, keeping
// the contigs in file order. Aligners number contigs by their
// position in the reference, so that order must be preserved.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Contig is one named sequence of a FASTA file.
type Contig struct {
	Name string
	Seq  []byte
}

func contigFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if i >= len(b) {
		return ""
	}
	return string(b[i:j])
}

var iupacUpperTable = [256]byte{}

func init() {
	for i := range iupacUpperTable {
		iupacUpperTable[i] = byte(i)
	}
	for _, c := range "ACGTN" {
		iupacUpperTable[c] = byte(c)
		iupacUpperTable[c+'a'-'A'] = byte(c)
	}
	for _, c := range "RYMKWSBDHV" {
		iupacUpperTable[c] = 'N'
		iupacUpperTable[c+'a'-'A'] = 'N'
	}
}

// ToUpperAndN converts a base to upper case, and normalizes IUPAC
// ambiguity codes to N.
func ToUpperAndN(base byte) byte {
	return iupacUpperTable[base]
}

// ParseFasta sequentially parses FASTA data. If normalize is true,
// all bases are converted with ToUpperAndN.
func ParseFasta(r io.Reader, normalize bool) (contigs []Contig, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)

	var current *Contig
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			name := contigFromHeader(b)
			if name == "" {
				return nil, fmt.Errorf("missing contig name in FASTA header on line %v", line)
			}
			contigs = append(contigs, Contig{Name: name})
			current = &contigs[len(contigs)-1]
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("sequence data before the first FASTA header on line %v", line)
		}
		start := len(current.Seq)
		current.Seq = append(current.Seq, b...)
		if normalize {
			seq := current.Seq[start:]
			for i, c := range seq {
				seq[i] = iupacUpperTable[c]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(contigs) == 0 {
		return nil, fmt.Errorf("empty FASTA input")
	}
	return contigs, nil
}

// ReadFasta parses the FASTA file with the given name.
func ReadFasta(filename string, normalize bool) (contigs []Contig, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()
	contigs, err = ParseFasta(f, normalize)
	if err != nil {
		return nil, fmt.Errorf("%v, in FASTA file %v", err, filename)
	}
	return contigs, nil
}
