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

package utils

import (
	"github.com/exascience/pargo/sync"

	"github.com/exascience/elbwa/internal"
)

// A Symbol is a unique pointer to a string. Optional SAM fields and
// per-record temporary values are keyed by Symbols, so that lookups
// compare pointers instead of strings.
type Symbol *string

type symbolKey string

func (k symbolKey) Hash() uint64 { return internal.StringHash(string(k)) }

// A symbolTable interns strings. Decoders running on different
// goroutines share one table.
type symbolTable struct {
	symbols *sync.Map
}

func newSymbolTable() symbolTable {
	return symbolTable{symbols: sync.NewMap(0)}
}

func (table symbolTable) intern(name string) Symbol {
	if symbol, found := table.symbols.Load(symbolKey(name)); found {
		return symbol.(Symbol)
	}
	symbol, _ := table.symbols.LoadOrCompute(symbolKey(name), func() interface{} {
		return Symbol(&name)
	})
	return symbol.(Symbol)
}

var symbols = newSymbolTable()

// Intern returns the Symbol for name. Equal names yield the same
// Symbol and *Intern(name) == name. Intern is safe for concurrent use.
func Intern(name string) Symbol {
	return symbols.intern(name)
}
