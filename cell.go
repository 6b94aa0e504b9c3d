// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !nopad

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// cellPadded reports the layout this build was compiled with, surfaced
// through ClassName's padding suffix.
const cellPadded = true

// crqCell is one CRQSeg ring slot: a single 128-bit word packing the
// ticket/epoch index (lo) and the item pointer's bit pattern (hi) so a
// single two-word CAS can move both atomically, the same layout the
// teacher's mpmc_128.go uses for its cycle/value slot. hi == 0 means the
// slot holds no item: callers may not push a nil item, so there is no
// ambiguity with a genuinely stored zero value.
//
// Build with -tags nopad to drop the trailing cache-line filler
// (cell_nopad.go has the unpadded sibling definition).
type crqCell struct {
	entry atomix.Uint128 // lo = idx (ticket, MSB = unsafe bit), hi = value bits
	_     [cacheLineSize - 16]byte
}

func (c *crqCell) load() (idx uint64, val uintptr) {
	lo, hi := c.entry.LoadAcquire()
	return lo, uintptr(hi)
}

func (c *crqCell) storeRelaxed(idx uint64, val uintptr) {
	c.entry.StoreRelaxed(idx, uint64(val))
}

func (c *crqCell) casIdxVal(oldIdx uint64, oldVal uintptr, newIdx uint64, newVal uintptr) bool {
	return c.entry.CompareAndSwapAcqRel(oldIdx, uint64(oldVal), newIdx, uint64(newVal))
}

// ringCell is one ring slot for the independent-single-word families
// (PRQSeg, MTQSeg): a value slot and a ticket/cycle index that are CASed
// separately rather than as one packed word, matching the teacher's
// `mpmc_compact.go` pattern of a lone `atomix.Uintptr` per slot plus this
// package's own ticket bookkeeping.
type ringCell struct {
	val atomix.Uintptr
	idx atomix.Uint64
	_   [cacheLineSize - 16]byte
}

// faaCell is one slot of the FAA generational array: a single value word.
// The ticket bookkeeping crqCell/ringCell need is unnecessary here because
// the FAA algorithm derives slot occupancy from the value itself (nil, a
// real pointer, or the taken sentinel).
type faaCell struct {
	val atomix.Uintptr
	_   [cacheLineSize - 8]byte
}

// takenSentinelObj's address is a unique, non-nil pointer value distinct
// from any legitimate caller-supplied item pointer. It marks a FAA array
// slot as "a consumer has claimed this slot before any producer reached
// it", following the original generational-array algorithm's taken
// marker.
var takenSentinelObj byte

func takenSentinel() uintptr {
	return uintptr(unsafe.Pointer(&takenSentinelObj))
}
