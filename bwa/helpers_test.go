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
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exascience/elbwa/fasta"
	"github.com/exascience/elbwa/native"
	"github.com/exascience/elbwa/native/nativetest"
)

const (
	simpleName = "@chr_727436_727956_3:0:0_1:0:0_0/1"
	simpleSeq1 = "GATGGCTGCGCAAGGGTTCTTACTGATCGCCACGTTTTTACTGGTGTTAATGGTGCTGGCGCGTCCTTTAGGCAGCGGGCTGGCGCGGCTGATTAATGACATTCCTCTTCCCGGTACAACGGGCGTTGAGCGCGAACTTTTTCGCGCACT"
	simpleSeq2 = "TGCTGCGTAGCAGATCGACCCAGGCATTCCCTAGCGTGCTCATGCTCTGGCTGGTAAACGCACGGATGAGGGCAAAAATCACCGCAATCCCGCTGGCGGCAGAAAGAAAGTTTTGCACCGTTAAGCCCGCCATCTGGCTGAAATAGCTCA"

	splitName = "@chr_1561275_1561756_1:0:0_2:0:0_5c/1"
	splitSeq1 = "GCATCGATAAGCAGGTCAAATTCTCCCGTCATTATCACCTCTGCTACTTAAATTTCCCGCTTTATAAGCCGATTACGGCCTGGCATTACCCTATCCATAATTTAGGTGGGATGCCCGGTGCGTGGTTGGCAGATCCGCTGTTCTTTATTT"
	splitSeq2 = "TCATCGACCCAGGTATCATCGCGACGGGTACGATTACTGGCGAAGGTGAGAATGTTTAAAATCCAGCCGCCGAGTTTTTCAGCAATGGTCACCCATGACCAACCGGTGAACAACGTGAGGGCCGCTGCCCAAACGCATAGCAGCGCAATA"

	simplePos1 = 727806
	simplePos2 = 727435

	phixLength = 5386
	chrLength  = 4639675
)

const readLength = 150

var readQual = strings.Repeat("2", readLength)

func randomBases(r *rand.Rand, n int) []byte {
	const bases = "ACGT"
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = bases[r.IntN(len(bases))]
	}
	return seq
}

func reverseComplement(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		switch seq[i] {
		case 'A':
			b.WriteByte('T')
		case 'C':
			b.WriteByte('G')
		case 'G':
			b.WriteByte('C')
		case 'T':
			b.WriteByte('A')
		default:
			b.WriteByte('N')
		}
	}
	return b.String()
}

var testContigs = sync.OnceValue(func() []fasta.Contig {
	r := rand.New(rand.NewPCG(5386, 4639675))
	phix := randomBases(r, phixLength)
	chr := randomBases(r, chrLength)
	copy(chr[simplePos1:], reverseComplement(simpleSeq1))
	copy(chr[simplePos2:], simpleSeq2)
	return []fasta.Contig{{Name: "PhiX", Seq: phix}, {Name: "chr", Seq: chr}}
})

// splitScript returns the lines BWA reports for the split pair: a
// primary and a supplementary alignment of read 1, and one alignment
// of read 2.
func splitScript() (string, string) {
	sam1 := splitName + "\t97\tchr\t931376\t60\t88M62S\t=\t932938\t1712\t" + splitSeq1 + "\t" + readQual +
		"\tNM:i:0\tMD:Z:88\tAS:i:88\tXS:i:0\tSA:Z:chr,932606,+,88S62M,60,0;\n" +
		splitName + "\t2145\tchr\t932606\t60\t88H62M\t=\t932938\t482\t" + splitSeq1[88:] + "\t" + readQual[88:] +
		"\tNM:i:0\tMD:Z:62\tAS:i:62\tXS:i:0\tSA:Z:chr,931376,+,88M62S,60,0;\n"
	sam2 := splitName + "\t145\tchr\t932938\t60\t150M\t=\t931376\t-1712\t" + reverseComplement(splitSeq2) + "\t" + readQual +
		"\tNM:i:0\tMD:Z:150\tAS:i:150\tXS:i:0\n"
	return sam1, sam2
}

// newTestEngine returns an engine with the two-contig test reference
// registered as "test_ref.fa".
func newTestEngine() *nativetest.Engine {
	engine := nativetest.New()
	engine.AddReference("test_ref.fa", testContigs()...)
	sam1, sam2 := splitScript()
	engine.Script(splitName, sam1, sam2)
	return engine
}

func newTestAligner(t *testing.T, opts ...Option) (*Aligner, *nativetest.Engine) {
	t.Helper()
	engine := newTestEngine()
	aligner, err := NewAlignerFromPath("test_ref.fa", append([]Option{WithEngine(engine)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = aligner.Close() })
	return aligner, engine
}

// writeIndexedFasta writes contigs to dir/name with empty index files
// next to it, and returns its path.
func writeIndexedFasta(t *testing.T, dir, name string, contigs ...fasta.Contig) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var b strings.Builder
	for _, c := range contigs {
		b.WriteString(">" + c.Name + "\n")
		for i := 0; i < len(c.Seq); i += 60 {
			b.Write(c.Seq[i:min(i+60, len(c.Seq))])
			b.WriteByte('\n')
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	for _, ext := range native.IndexExtensions {
		require.NoError(t, os.WriteFile(path+ext, nil, 0o644))
	}
	return path
}
