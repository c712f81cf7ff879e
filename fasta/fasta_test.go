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

package fasta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFastaKeepsOrder(t *testing.T) {
	input := ">zeta some description\nACGT\nacgt\n\n>alpha\nRYN\n>mid\tx\nGG\n"
	contigs, err := ParseFasta(strings.NewReader(input), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 3 {
		t.Fatalf("expected 3 contigs, got %v", len(contigs))
	}
	expected := []Contig{{"zeta", []byte("ACGTACGT")}, {"alpha", []byte("NNN")}, {"mid", []byte("GG")}}
	for i, contig := range contigs {
		if contig.Name != expected[i].Name || string(contig.Seq) != string(expected[i].Seq) {
			t.Errorf("contig %v: got %v/%s, want %v/%s", i, contig.Name, contig.Seq, expected[i].Name, expected[i].Seq)
		}
	}
}

func TestParseFastaRaw(t *testing.T) {
	contigs, err := ParseFasta(strings.NewReader(">a\nacgtr\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	if string(contigs[0].Seq) != "acgtr" {
		t.Errorf("raw parse modified bases: %s", contigs[0].Seq)
	}
}

func TestParseFastaErrors(t *testing.T) {
	for _, input := range []string{"", "ACGT\n>a\nA\n", ">\nACGT\n"} {
		if _, err := ParseFasta(strings.NewReader(input), true); err == nil {
			t.Errorf("no error for %q", input)
		}
	}
}

func TestReadFasta(t *testing.T) {
	name := filepath.Join(t.TempDir(), "ref.fa")
	if err := os.WriteFile(name, []byte(">PhiX\nGAGTTTTATCG\n>chr\nAGCTTTTCATT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	contigs, err := ReadFasta(name, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 2 || contigs[0].Name != "PhiX" || contigs[1].Name != "chr" {
		t.Errorf("unexpected contigs %v", contigs)
	}
	if _, err := ReadFasta(filepath.Join(t.TempDir(), "missing.fa"), true); err == nil {
		t.Error("missing file not reported")
	}
}
