// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/spin"

	"github.com/ringforge/mpmcq/internal/remap"
)

// tryCloseMTQBudget bounds how many times MTQSeg.Push retries a
// cooperative close before forcing the closed bit.
const tryCloseMTQBudget = 10

// MTQSeg is a ring segment that advances head/tail with a CAS loop
// rather than a blind fetch-and-add: a producer only claims a slot once
// it observes the slot's ticket matches the tail it is about to publish,
// so (unlike CRQSeg/PRQSeg) a losing CAS simply retries the same ticket
// instead of minting a new one.
//
// Unlike CRQSeg and PRQSeg, MTQSeg has a genuine bounded mode
// (constructed via NewBoundedMTQSeg) that never closes: the original
// algorithm's only segment kind meant to be used as a standalone queue
// without any adapter chaining a successor. Unbounded MTQSeg (via
// NewMTQSeg, typically wrapped by LinkedAdapter) closes like CRQSeg and
// PRQSeg once full.
type MTQSeg struct {
	segmentBase[MTQSeg]
	array    []ringCell
	sizeRing uint64
	mask     uint64
	pow2     bool
	remap    remap.Table
	bounded  bool
}

// NewMTQSeg constructs an unbounded MTQSeg of sizeHint slots: Push
// closes the segment once full rather than refusing indefinitely,
// signaling an owning adapter to chain a successor.
func NewMTQSeg(sizeHint int, maxThreads int) *MTQSeg {
	return newMTQSeg(sizeHint, maxThreads, 0, false)
}

// NewBoundedMTQSeg constructs a standalone bounded MTQSeg: Push returns
// ErrWouldBlock forever once full instead of closing, and there is no
// successor to chain to — use this directly as a Queue, not through an
// adapter.
func NewBoundedMTQSeg(sizeHint int, maxThreads int) *MTQSeg {
	return newMTQSeg(sizeHint, maxThreads, 0, true)
}

func newMTQSeg(sizeHint int, _ int, start uint64, bounded bool) *MTQSeg {
	if sizeHint <= 0 {
		panic("mpmcq: MTQSeg size must be > 0")
	}
	size := ringSize(uint64(sizeHint))
	s := &MTQSeg{
		array:    make([]ringCell, size),
		sizeRing: size,
		mask:     size - 1,
		pow2:     pow2Enabled,
		remap:    remap.New(size, ringCellSize),
		bounded:  bounded,
	}
	for i := start; i < start+size; i++ {
		idx := s.index(i)
		s.array[idx].val.StoreRelaxed(0)
		s.array[idx].idx.StoreRelaxed(i)
	}
	s.SetStartIndex(start)
	return s
}

func (s *MTQSeg) index(i uint64) uint64 {
	if s.pow2 {
		return s.remap.Index(i & s.mask)
	}
	return s.remap.Index(i % s.sizeRing)
}

// Push implements Queue.
func (s *MTQSeg) Push(item unsafe.Pointer, _ int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	if s.Draining() {
		return ErrWouldBlock
	}
	itemVal := uintptr(item)
	sw := spin.Wait{}
	tryClose := 0
	var node *ringCell
	var idx uint64
	for {
		tailTicket := s.tail.LoadRelaxed()
		if !s.bounded && s.IsClosedTail(tailTicket) {
			return ErrWouldBlock
		}
		node = &s.array[s.index(tailTicket)]
		idx = node.idx.LoadAcquire()
		if tailTicket == idx {
			if s.tail.CompareAndSwapRelaxed(tailTicket, tailTicket+1) {
				break
			}
		} else if tailTicket > idx {
			if s.bounded {
				return ErrWouldBlock
			}
			force := tryClose > tryCloseMTQBudget
			tryClose++
			if s.CloseSegment(tailTicket-1, force) {
				return ErrWouldBlock
			}
		}
		sw.Once()
	}
	node.val.StoreRelease(itemVal)
	node.idx.StoreRelease(idx + 1)
	return nil
}

// Pop implements Queue.
func (s *MTQSeg) Pop(_ int) (unsafe.Pointer, error) {
	sw := spin.Wait{}
	for {
		headTicket := s.head.LoadRelaxed()
		node := &s.array[s.index(headTicket)]
		idx := node.idx.LoadAcquire()
		diff := int64(idx) - int64(headTicket+1)
		if diff == 0 {
			if s.head.CompareAndSwapRelaxed(headTicket, headTicket+1) {
				val := node.val.LoadAcquire()
				node.idx.StoreRelease(headTicket + s.sizeRing)
				return unsafe.Pointer(val), nil
			}
		} else if diff < 0 {
			if s.IsEmpty() {
				return nil, ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// Length implements Queue.
func (s *MTQSeg) Length(_ int) int {
	if s.bounded {
		t := int64(s.tail.LoadRelaxed())
		h := int64(s.head.LoadRelaxed())
		if t > h {
			return int(t - h)
		}
		return 0
	}
	return s.LengthApprox()
}

// Capacity implements Queue.
func (s *MTQSeg) Capacity() int {
	return int(s.sizeRing)
}

// ClassName implements Queue.
func (s *MTQSeg) ClassName(padding bool) string {
	name := "MTQueue"
	if cellPadded && padding {
		name += "/padded"
	}
	if s.bounded {
		return "Bounded" + name
	}
	return name
}

func (s *MTQSeg) isClosedForPush() bool {
	return !s.bounded
}
