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
	"fmt"

	"golang.org/x/sys/unix"
)

// IndexExtensions lists the files BWA reads for IndexAll, relative to
// the index prefix.
var IndexExtensions = []string{".bwt", ".sa", ".ann", ".amb", ".pac"}

func readable(name string) bool {
	return unix.Access(name, unix.R_OK) == nil
}

// InferPrefix returns the index prefix BWA would use for path: the
// 64-bit prefix path.64 if path.64.bwt exists, otherwise path if
// path.bwt exists. It reports false if neither exists.
func InferPrefix(path string) (string, bool) {
	if prefix := path + ".64"; readable(prefix + ".bwt") {
		return prefix, true
	}
	if readable(path + ".bwt") {
		return path, true
	}
	return "", false
}

// CheckIndex verifies that every file of the index at path is
// readable, and returns the index prefix.
//
// The BWA loader terminates the process when it cannot open one of
// the files after locating the .bwt file, so engines call CheckIndex
// before handing the path to the loader.
func CheckIndex(path string) (string, error) {
	prefix, ok := InferPrefix(path)
	if !ok {
		return "", fmt.Errorf("%w: %v.bwt", ErrIndexMissing, path)
	}
	for _, ext := range IndexExtensions {
		if name := prefix + ext; !readable(name) {
			return "", fmt.Errorf("%w: %v", ErrIndexMissing, name)
		}
	}
	return prefix, nil
}
