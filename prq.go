// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/spin"

	"github.com/ringforge/mpmcq/internal/remap"
)

// tryClosePRQBudget is the number of cooperative close attempts PRQSeg
// makes before forcing the closed bit.
const tryClosePRQBudget = 10

// ringCellSize is the byte footprint of one ringCell's two independent
// atomic words, used to size the cache-remap table.
const ringCellSize = 16

// PRQSeg is a single ring segment using the PRQ algorithm: each slot's
// value and ticket/epoch index are two independent words CASed one at a
// time, rather than CRQSeg's single two-word CAS. A push reserves a slot
// by first CASing in a thread-tagged "bottom" sentinel — (tid<<1)|1,
// which is always odd and therefore never collides with a real pointer
// (pointers returned by Go's allocator are at minimum 8-byte aligned) —
// then commits the real item once the reservation's epoch is confirmed,
// rolling the reservation back if a concurrent pop raced it to the
// epoch check.
//
// PRQSeg has the same closing behavior as CRQSeg: it closes permanently
// once full, whether wrapped by an adapter or used standalone.
//
// PRQSeg requires tid to be the caller's stable thread id: reusing a tid
// across two live goroutines can make one thread's reservation look like
// another's and corrupt ordering, since the sentinel only encodes tid,
// not goroutine identity.
type PRQSeg struct {
	segmentBase[PRQSeg]
	array      []ringCell
	sizeRing   uint64
	mask       uint64
	pow2       bool
	remap      remap.Table
	maxThreads int
}

// NewPRQSeg constructs a standalone PRQSeg of sizeHint slots supporting
// thread ids in [0, maxThreads).
func NewPRQSeg(sizeHint int, maxThreads int) *PRQSeg {
	return newPRQSeg(sizeHint, maxThreads, 0)
}

func newPRQSeg(sizeHint int, maxThreads int, start uint64) *PRQSeg {
	if sizeHint <= 0 {
		panic("mpmcq: PRQSeg size must be > 0")
	}
	size := ringSize(uint64(sizeHint))
	s := &PRQSeg{
		array:      make([]ringCell, size),
		sizeRing:   size,
		mask:       size - 1,
		pow2:       pow2Enabled,
		remap:      remap.New(size, ringCellSize),
		maxThreads: maxThreads,
	}
	for i := start; i < start+size; i++ {
		idx := s.index(i)
		s.array[idx].val.StoreRelaxed(0)
		s.array[idx].idx.StoreRelaxed(i)
	}
	s.SetStartIndex(start)
	return s
}

func (s *PRQSeg) index(i uint64) uint64 {
	if s.pow2 {
		return s.remap.Index(i & s.mask)
	}
	return s.remap.Index(i % s.sizeRing)
}

func threadLocalBottom(tid int) uintptr {
	return uintptr((tid << 1) | 1)
}

func isBottomPtr(val uintptr) bool {
	return val&1 != 0
}

// Push implements Queue.
func (s *PRQSeg) Push(item unsafe.Pointer, tid int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	if tid < 0 || tid >= s.maxThreads {
		panic("mpmcq: tid out of range")
	}
	if s.Draining() {
		return ErrWouldBlock
	}
	itemVal := uintptr(item)
	bottom := threadLocalBottom(tid)
	sw := spin.Wait{}
	tryClose := 0
	for {
		tailTicket := s.tail.AddAcqRel(1) - 1
		if s.IsClosedTail(tailTicket) {
			return ErrWouldBlock
		}
		cell := &s.array[s.index(tailTicket)]
		idx := cell.idx.LoadAcquire()
		val := cell.val.LoadAcquire()
		if val == 0 {
			if s.TailIndex(idx) <= tailTicket && (!s.IsClosedTail(idx) || s.head.LoadAcquire() <= tailTicket) {
				if cell.val.CompareAndSwapAcqRel(val, bottom) {
					if cell.idx.CompareAndSwapAcqRel(idx, tailTicket+s.sizeRing) {
						if cell.val.CompareAndSwapAcqRel(bottom, itemVal) {
							return nil
						}
					} else {
						cell.val.CompareAndSwapAcqRel(bottom, 0)
					}
				}
			}
		}
		if tailTicket >= s.head.LoadAcquire()+s.sizeRing {
			tryClose++
			if s.CloseSegment(tailTicket, tryClose > tryClosePRQBudget) {
				return ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// Pop implements Queue.
func (s *PRQSeg) Pop(_ int) (unsafe.Pointer, error) {
	sw := spin.Wait{}
	for {
		headTicket := s.head.AddAcqRel(1) - 1
		cell := &s.array[s.index(headTicket)]

		retries := 0
		var tt uint64
		for {
			idxRaw := cell.idx.LoadAcquire()
			unsafeCell := s.IsClosedTail(idxRaw)
			idx := s.TailIndex(idxRaw)
			val := cell.val.LoadAcquire()
			if idxRaw != cell.idx.LoadAcquire() {
				continue
			}

			if idx > headTicket+s.sizeRing {
				break
			}
			if val != 0 && !isBottomPtr(val) {
				if idx == headTicket+s.sizeRing {
					cell.val.StoreRelease(0)
					return unsafe.Pointer(val), nil
				}
				if unsafeCell {
					if cell.idx.LoadAcquire() == idxRaw {
						break
					}
				} else {
					if cell.idx.CompareAndSwapAcqRel(idxRaw, setUnsafeBit(idx)) {
						break
					}
				}
			} else {
				if retries&((1<<8)-1) == 0 {
					tt = s.tail.LoadAcquire()
				}
				closed := s.IsClosedTail(tt)
				t := s.TailIndex(tt)
				if unsafeCell || t < headTicket+1 || closed || retries > 4*1024 {
					if isBottomPtr(val) && !cell.val.CompareAndSwapAcqRel(val, 0) {
						continue
					}
					if cell.idx.CompareAndSwapAcqRel(idxRaw, closedMaskIf(unsafeCell)|(headTicket+s.sizeRing)) {
						break
					}
				}
				retries++
			}
			sw.Once()
		}

		if s.TailIndex(s.tail.LoadAcquire()) <= headTicket+1 {
			s.FixState()
			return nil, ErrWouldBlock
		}
	}
}

// Length implements Queue.
func (s *PRQSeg) Length(_ int) int {
	return s.LengthApprox()
}

// Capacity implements Queue.
func (s *PRQSeg) Capacity() int {
	return int(s.sizeRing)
}

// ClassName implements Queue.
func (s *PRQSeg) ClassName(padding bool) string {
	if cellPadded && padding {
		return "PRQueue/padded"
	}
	return "PRQueue"
}

func (s *PRQSeg) isClosedForPush() bool {
	return true
}
