// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build nopad

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// cellPadded mirrors cell.go's constant for the unpadded build.
const cellPadded = false

// crqCell is the unpadded sibling of cell.go's packed CRQSeg slot.
type crqCell struct {
	entry atomix.Uint128
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

// ringCell is the unpadded sibling of cell.go's PRQSeg/MTQSeg slot.
type ringCell struct {
	val atomix.Uintptr
	idx atomix.Uint64
}

// faaCell is the unpadded sibling of cell.go's faaCell.
type faaCell struct {
	val atomix.Uintptr
}

var takenSentinelObj byte

func takenSentinel() uintptr {
	return uintptr(unsafe.Pointer(&takenSentinelObj))
}
