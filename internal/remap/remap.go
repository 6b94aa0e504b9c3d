// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package remap computes the cache-line-aware index permutation ring
// segments use to lay consecutive logical slots across distinct cache
// lines, so that a producer advancing the tail and a consumer advancing
// the head touch different lines as often as possible instead of
// thrashing a shared one.
package remap

// Table holds the permutation for one (cellSize, ringSize) pair. Build it
// once per segment at construction time and reuse it for every index.
type Table struct {
	numCacheLines     uint64
	cellsPerCacheLine uint64
	identity          bool
}

// cacheLineSize is the assumed cache line size in bytes.
const cacheLineSize = 64

// New builds a remap table for ringSize cells of cellSize bytes each. When
// the ring is smaller than one cache line (ringSize*cellSize <
// cacheLineSize) there is nothing to permute and Index becomes the
// identity function, matching the original suite's IdentityRemap
// fallback for small rings. Index is also the identity when the ring does
// not fill a whole number of cache lines, since the permutation below is
// only one-to-one when ringSize*cellSize is a multiple of cacheLineSize.
func New(ringSize, cellSize uint64) Table {
	if cellSize == 0 || ringSize*cellSize < cacheLineSize || (ringSize*cellSize)%cacheLineSize != 0 {
		return Table{identity: true}
	}
	cellsPerCacheLine := cacheLineSize / cellSize
	if cellsPerCacheLine == 0 {
		cellsPerCacheLine = 1
	}
	numCacheLines := (ringSize * cellSize) / cacheLineSize
	if numCacheLines == 0 {
		return Table{identity: true}
	}
	return Table{numCacheLines: numCacheLines, cellsPerCacheLine: cellsPerCacheLine}
}

// Index maps a logical slot index i (already reduced modulo the ring
// size) to the physical array index that spreads consecutive i across
// distinct cache lines first, wrapping to the next cell within a line
// only after every line has been visited once.
func (t Table) Index(i uint64) uint64 {
	if t.identity {
		return i
	}
	return i%t.numCacheLines*t.cellsPerCacheLine + i/t.numCacheLines
}
