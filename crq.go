// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/spin"

	"github.com/ringforge/mpmcq/internal/remap"
)

// tryCloseCRQBudget is the number of cooperative close attempts CRQSeg
// makes before forcing the closed bit, matching the original suite's
// TRY_CLOSE_CRQ constant.
const tryCloseCRQBudget = 10

// crqCellSize is the byte footprint of one atomix.Uint128 entry, used to
// size the cache-remap table.
const crqCellSize = 16

// CRQSeg is a single ring segment using the CRQ algorithm: each slot is
// a single 128-bit word packing a ticket/epoch index and the item
// pointer, moved with one two-word compare-and-swap. Pushes and pops
// mint a fresh ticket via fetch-and-add and retry on a new ticket rather
// than the same slot when the CAS loses a race, so progress never stalls
// behind one contended cell.
//
// CRQSeg closes itself once the ring fills (and stays closed: it never
// reopens), exactly as the original algorithm does regardless of
// bounded/unbounded usage. LinkedAdapter reads a closed Push as "chain a
// successor"; BoundedItemAdapter and BoundedSegmentAdapter read it the
// same way but additionally cap the live item count or the live segment
// count, respectively.
// There is no segment-level "stay bounded, refuse to close" mode for
// CRQSeg — that mode only exists for MTQSeg, which (unlike CRQSeg) is
// also used standalone without any adapter.
type CRQSeg struct {
	segmentBase[CRQSeg]
	array    []crqCell
	sizeRing uint64
	mask     uint64
	pow2     bool
	remap    remap.Table
}

// NewCRQSeg constructs a standalone CRQSeg of sizeHint slots (rounded up
// to a power of two unless built with the nopow2 tag). maxThreads is
// accepted for constructor-signature uniformity with PRQSeg/MTQSeg/FAASeg;
// CRQSeg itself carries no per-thread state. A standalone segment is a
// single-use bounded queue: once it closes after filling up, Push never
// succeeds again even after draining, matching the original algorithm's
// behavior when a segment is not wrapped by an adapter that chains a
// successor.
func NewCRQSeg(sizeHint int, maxThreads int) *CRQSeg {
	return newCRQSeg(sizeHint, maxThreads, 0)
}

func newCRQSeg(sizeHint int, _ int, start uint64) *CRQSeg {
	if sizeHint <= 0 {
		panic("mpmcq: CRQSeg size must be > 0")
	}
	size := ringSize(uint64(sizeHint))
	s := &CRQSeg{
		array:    make([]crqCell, size),
		sizeRing: size,
		mask:     size - 1,
		pow2:     pow2Enabled,
		remap:    remap.New(size, crqCellSize),
	}
	for i := start; i < start+size; i++ {
		s.array[s.index(i)].storeRelaxed(i, 0)
	}
	s.SetStartIndex(start)
	return s
}

func (s *CRQSeg) index(i uint64) uint64 {
	if s.pow2 {
		return s.remap.Index(i & s.mask)
	}
	return s.remap.Index(i % s.sizeRing)
}

// Push implements Queue.
func (s *CRQSeg) Push(item unsafe.Pointer, _ int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	if s.Draining() {
		return ErrWouldBlock
	}
	itemVal := uintptr(item)
	sw := spin.Wait{}
	tryClose := 0
	for {
		tailTicket := s.tail.AddAcqRel(1) - 1
		if s.IsClosedTail(tailTicket) {
			return ErrWouldBlock
		}
		cell := &s.array[s.index(tailTicket)]
		idx, val := cell.load()
		if val == 0 {
			nodeIdx := s.TailIndex(idx)
			unsafeCell := s.IsClosedTail(idx)
			if nodeIdx <= tailTicket && (!unsafeCell || s.head.LoadAcquire() < tailTicket) {
				if cell.casIdxVal(idx, 0, tailTicket, itemVal) {
					return nil
				}
			}
		}
		if tailTicket >= s.head.LoadAcquire()+s.sizeRing {
			tryClose++
			if s.CloseSegment(tailTicket, tryClose > tryCloseCRQBudget) {
				return ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// Pop implements Queue.
func (s *CRQSeg) Pop(_ int) (unsafe.Pointer, error) {
	sw := spin.Wait{}
	for {
		headTicket := s.head.AddAcqRel(1) - 1
		cell := &s.array[s.index(headTicket)]

		retries := 0
		var tt uint64
		for {
			idxRaw, val := cell.load()
			unsafeCell := s.IsClosedTail(idxRaw)
			idx := s.TailIndex(idxRaw)

			if idx > headTicket {
				break
			}
			if val != 0 {
				if idx == headTicket {
					if cell.casIdxVal(idxRaw, val, closedMaskIf(unsafeCell)|(headTicket+s.sizeRing), 0) {
						return unsafe.Pointer(val), nil
					}
				} else {
					if cell.casIdxVal(idxRaw, val, setUnsafeBit(idx), val) {
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
					if cell.casIdxVal(idxRaw, val, closedMaskIf(unsafeCell)|(headTicket+s.sizeRing), val) {
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

// setUnsafeBit marks a cell's ticket as belonging to an epoch a consumer
// gave up waiting on, so a future producer knows to skip it rather than
// block a dequeuer indefinitely.
func setUnsafeBit(idx uint64) uint64 {
	return idx | closedBit
}

// closedMaskIf returns the unsafe/closed tag bit to carry forward onto a
// cell's next epoch, preserving it once set.
func closedMaskIf(unsafeCell bool) uint64 {
	if unsafeCell {
		return closedBit
	}
	return 0
}

// Length implements Queue.
func (s *CRQSeg) Length(_ int) int {
	return s.LengthApprox()
}

// Capacity implements Queue.
func (s *CRQSeg) Capacity() int {
	return int(s.sizeRing)
}

// ClassName implements Queue.
func (s *CRQSeg) ClassName(padding bool) string {
	if cellPadded && padding {
		return "CRQueue/padded"
	}
	return "CRQueue"
}

func (s *CRQSeg) isClosedForPush() bool {
	return true
}
