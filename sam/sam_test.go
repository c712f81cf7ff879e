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
	"strconv"
	"strings"
	"testing"
)

const bwaLine = "chr_727436_727956_3:0:0_1:0:0_0/1\t83\tchr\t727807\t60\t10M2D5M3S\t=\t727436\t-521\tACGTACGTACGTACGTAC\t222222222222222222\tNM:i:2\tMD:Z:10^AC5\tAS:i:9\tXS:i:0\tXT:A:U\tZB:B:c,-1,2\tZH:H:1ae3"

func TestParseAlignment(t *testing.T) {
	var sc StringScanner
	sc.Reset(bwaLine)
	aln := sc.ParseAlignment()
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if aln.QNAME != "chr_727436_727956_3:0:0_1:0:0_0/1" || aln.FLAG != 83 || aln.RNAME != "chr" {
		t.Errorf("unexpected mandatory fields %+v", aln)
	}
	if aln.POS != 727807 || aln.Pos() != 727806 {
		t.Errorf("unexpected position %v", aln.POS)
	}
	if aln.MAPQ != 60 || aln.CIGAR != "10M2D5M3S" || aln.RNEXT != "=" || aln.PNEXT != 727436 || aln.TLEN != -521 {
		t.Errorf("unexpected mate fields %+v", aln)
	}
	if !aln.IsMultiple() || !aln.IsProper() || !aln.IsReversed() || !aln.IsFirst() || aln.IsUnmapped() {
		t.Errorf("unexpected flag predicates for %v", aln.FLAG)
	}
	if nm, ok := aln.Tag("NM"); !ok || nm.(int32) != 2 {
		t.Errorf("unexpected NM tag %v", nm)
	}
	if md, ok := aln.Tag("MD"); !ok || md.(string) != "10^AC5" {
		t.Errorf("unexpected MD tag %v", md)
	}
	if xt, ok := aln.Tag("XT"); !ok || xt.(byte) != 'U' {
		t.Errorf("unexpected XT tag %v", xt)
	}
	if zb, ok := aln.Tag("ZB"); !ok || len(zb.([]int8)) != 2 || zb.([]int8)[0] != -1 {
		t.Errorf("unexpected ZB tag %v", zb)
	}
	if zh, ok := aln.Tag("ZH"); !ok || len(zh.(ByteArray)) != 2 || zh.(ByteArray)[1] != 0xE3 {
		t.Errorf("unexpected ZH tag %v", zh)
	}
	if aln.IsSplit() {
		t.Error("alignment without SA tag reported as split")
	}
	end, err := aln.End()
	if err != nil {
		t.Fatal(err)
	}
	if end != 727806+17 {
		t.Errorf("unexpected end %v", end)
	}
	out, err := aln.Format(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != bwaLine+"\n" {
		t.Errorf("format does not reproduce the input line:\n%q\n%q", out, bwaLine)
	}
}

func TestParseAlignmentErrors(t *testing.T) {
	var sc StringScanner
	for _, line := range []string{
		"",
		"r1\t0\tchr\t1",
		"r1\tx\tchr\t1\t60\t4M\t*\t0\t0\tACGT\t2222",
		"r1\t0\tchr\t1\t60\t4M\t*\t0\t0\tACGT\t2222\tNM:q:1",
		"r1\t0\tchr\t1\t60\t4M\t*\t0\t0\tACGT\t2222\tNMi:1",
		"r1\t0\tchr\t1\t60\t4M\t*\t0\t0\tACGT\t2222\tZH:H:1A3",
	} {
		sc.Reset(line)
		sc.ParseAlignment()
		if sc.Err() == nil {
			t.Errorf("no error for %q", line)
		}
	}
	sc.Reset("r1\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\t2222")
	aln := sc.ParseAlignment()
	if err := sc.Err(); err != nil {
		t.Fatalf("unmapped record rejected: %v", err)
	}
	if aln.Pos() != -1 || !aln.IsUnmapped() {
		t.Errorf("unexpected unmapped record %+v", aln)
	}
}

func TestScanCigarString(t *testing.T) {
	ops, err := ScanCigarString("3S4M1I2D5M")
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 5 || ops[0] != (CigarOperation{3, 'S'}) || ops[3] != (CigarOperation{2, 'D'}) {
		t.Errorf("unexpected CIGAR operations %v", ops)
	}
	if ReadLength(ops) != 13 || ReferenceLength(ops) != 11 {
		t.Errorf("unexpected lengths %v %v", ReadLength(ops), ReferenceLength(ops))
	}
	if ops, err := ScanCigarString("*"); err != nil || len(ops) != 0 {
		t.Errorf("unexpected result for *: %v %v", ops, err)
	}
	for _, cigar := range []string{"4Q", "12", "M"} {
		if _, err := ScanCigarString(cigar); err == nil {
			t.Errorf("no error for CIGAR %q", cigar)
		}
	}
}

func TestCigarCacheLimit(t *testing.T) {
	if _, err := ScanCigarString("4Q"); err == nil {
		t.Fatal("no error for CIGAR 4Q")
	}
	cigarSliceCacheMutex.RLock()
	_, cached := cigarSliceCache["4Q"]
	cigarSliceCacheMutex.RUnlock()
	if cached {
		t.Error("invalid CIGAR string was cached")
	}

	for i := 1; i <= cigarCacheLimit+100; i++ {
		cigar := strconv.Itoa(i) + "M"
		ops, err := ScanCigarString(cigar)
		if err != nil {
			t.Fatal(err)
		}
		if len(ops) != 1 || ops[0] != (CigarOperation{int32(i), 'M'}) {
			t.Fatalf("unexpected CIGAR operations %v for %v", ops, cigar)
		}
	}
	cigarSliceCacheMutex.RLock()
	size := len(cigarSliceCache)
	cigarSliceCacheMutex.RUnlock()
	if size > cigarCacheLimit {
		t.Errorf("CIGAR cache holds %v entries, limit is %v", size, cigarCacheLimit)
	}
}

func TestAlignmentValidate(t *testing.T) {
	valid := []string{
		bwaLine,
		"r\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\t*",
		"r\t2304\tchr\t5\t60\t3H4M\t*\t0\t0\tACGT\tIIII",
		"r\t256\tchr\t5\t0\t4M\t*\t0\t0\t*\t*",
	}
	for _, line := range valid {
		var sc StringScanner
		sc.Reset(line)
		aln := sc.ParseAlignment()
		if err := sc.Err(); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if err := aln.Validate(); err != nil {
			t.Errorf("valid line %q rejected: %v", line, err)
		}
	}
	invalid := []string{
		"r\t0\tchr\t1\t60\tbogus\t*\t0\t0\tACGT\tIIII",
		"r\t0\tchr\t1\t60\t\t*\t0\t0\tACGT\tIIII",
		"r\t0\tchr\t1\t60\t4M\t*\t0\t0\tACGT\tII",
		"r\t0\tchr\t-7\t60\t4M\t*\t0\t0\tACGT\tIIII",
		"r\t0\tchr\t1\t60\t4M\t=\t-3\t0\tACGT\tIIII",
		"r\t0\tchr\t1\t60\t9M\t*\t0\t0\tACGT\tIIII",
		"r\t0\tchr\t1\t60\t4M\t*\t0\t0\t*\tIIII",
	}
	for _, line := range invalid {
		var sc StringScanner
		sc.Reset(line)
		aln := sc.ParseAlignment()
		if err := sc.Err(); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if err := aln.Validate(); err == nil {
			t.Errorf("invalid line %q accepted", line)
		}
	}
}

func TestHeaderFormat(t *testing.T) {
	hdr := NewHeader()
	hdr.AddSQ("PhiX", 5386)
	hdr.AddSQ("chr", 4639675)
	hdr.SQ[1]["M5"] = "0123"
	hdr.SQ[1]["AS"] = "ecoli"
	got := string(hdr.Format(nil))
	want := "@SQ\tSN:PhiX\tLN:5386\n@SQ\tSN:chr\tLN:4639675\tAS:ecoli\tM5:0123\n"
	if got != want {
		t.Errorf("unexpected header text:\n%q\n%q", got, want)
	}
}

func TestParseHeader(t *testing.T) {
	text := "@HD\tVN:1.6\tSO:unsorted\n@SQ\tSN:PhiX\tLN:5386\n@SQ\tSN:chr\tLN:4639675\n@PG\tID:bwa\tPN:bwa\n@CO\tsome comment\nr1\t4\t*\t0\t0\t*\t*\t0\t0\tA\t2\n"
	reader := bufio.NewReader(strings.NewReader(text))
	hdr, lines, err := ParseHeader(reader)
	if err != nil {
		t.Fatal(err)
	}
	if lines != 5 || len(hdr.SQ) != 2 || len(hdr.PG) != 1 || len(hdr.CO) != 1 {
		t.Fatalf("unexpected header %+v after %v lines", hdr, lines)
	}
	if sn, _ := SQ_SN(hdr.SQ[1]); sn != "chr" {
		t.Errorf("unexpected SN %v", sn)
	}
	if ln, _ := SQ_LN(hdr.SQ[1]); ln != 4639675 {
		t.Errorf("unexpected LN %v", ln)
	}
	if got := string(hdr.Format(nil)); got != text[:strings.Index(text, "r1\t")] {
		t.Errorf("unexpected round trip:\n%q", got)
	}
	hdr, _, err = ParseHeader(bufio.NewReader(strings.NewReader("@SQ\tSN:a\tLN:1\n@xY\tAB:c\n@xY\tAB:d\n")))
	if err != nil {
		t.Fatal(err)
	}
	if records := hdr.UserRecords["@xY"]; len(records) != 2 || records[1]["AB"] != "d" {
		t.Errorf("unexpected user records %v", hdr.UserRecords)
	}
	if _, _, err := ParseHeader(bufio.NewReader(strings.NewReader("@XY\tAB:c\n"))); err == nil {
		t.Error("unknown record type not detected")
	}
	if _, _, err := ParseHeader(bufio.NewReader(strings.NewReader("@SQ\tSN:a\tSN:b\n"))); err == nil {
		t.Error("duplicate tag not detected")
	}
	if _, _, err := ParseHeader(bufio.NewReader(strings.NewReader("@SQ\tSN:a\n@HD\tVN:1.6\n"))); err == nil {
		t.Error("late @HD not detected")
	}
}
