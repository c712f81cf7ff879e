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

package native

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBWADefaults(t *testing.T) {
	opt := BWADefaults()
	assert.Equal(t, int32(1), opt.Match)
	assert.Equal(t, int32(4), opt.Mismatch)
	assert.Equal(t, int32(6), opt.GapOpenDel)
	assert.Equal(t, int32(6), opt.GapOpenIns)
	assert.Equal(t, int32(1), opt.GapExtendDel)
	assert.Equal(t, int32(1), opt.GapExtendIns)
	assert.Equal(t, int32(17), opt.PenUnpaired)
	assert.Equal(t, int32(5), opt.PenClip5)
	assert.Equal(t, int32(5), opt.PenClip3)
	assert.Equal(t, int32(30), opt.MinScore)
	assert.Equal(t, int32(19), opt.MinSeedLen)
	assert.Zero(t, opt.Flag)

	var mat [25]int8
	FillScoringMatrix(1, 4, &mat)
	assert.Equal(t, mat, opt.Mat)
}

func TestFillScoringMatrix(t *testing.T) {
	var mat [25]int8
	FillScoringMatrix(2, 3, &mat)
	expected := [25]int8{
		2, -3, -3, -3, -1,
		-3, 2, -3, -3, -1,
		-3, -3, 2, -3, -1,
		-3, -3, -3, 2, -1,
		-1, -1, -1, -1, -1,
	}
	assert.Equal(t, expected, mat)
}

func touch(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(name, nil, 0o644))
	}
}

func TestInferPrefix(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.fa")

	_, ok := InferPrefix(ref)
	assert.False(t, ok)

	touch(t, ref+".bwt")
	prefix, ok := InferPrefix(ref)
	assert.True(t, ok)
	assert.Equal(t, ref, prefix)

	touch(t, ref+".64.bwt")
	prefix, ok = InferPrefix(ref)
	assert.True(t, ok)
	assert.Equal(t, ref+".64", prefix)
}

func TestCheckIndex(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.fa")

	_, err := CheckIndex(ref)
	assert.ErrorIs(t, err, ErrIndexMissing)

	touch(t, ref+".bwt", ref+".sa", ref+".ann", ref+".amb")
	_, err = CheckIndex(ref)
	require.ErrorIs(t, err, ErrIndexMissing)
	assert.Contains(t, err.Error(), ".pac")

	touch(t, ref+".pac")
	prefix, err := CheckIndex(ref)
	require.NoError(t, err)
	assert.Equal(t, ref, prefix)
}

func TestErrorsDistinct(t *testing.T) {
	all := []error{ErrUnavailable, ErrAllocation, ErrIndexLoad, ErrIndexMissing, ErrForeignIndex}
	for i, a := range all {
		for j, b := range all {
			assert.Equal(t, i == j, errors.Is(a, b))
		}
	}
}
