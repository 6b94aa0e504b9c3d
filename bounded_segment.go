// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

const (
	kHPBoundedSegmentTail = 0
	kHPBoundedSegmentHead = 1
)

// BoundedSegmentAdapter caps an unbounded segment chain at a fixed
// number of live segments instead of an exact item count: Push may only
// allocate a successor segment while the live segment count,
// segmentTail-segmentHead+1, is below maxSegments, so the adapter's
// effective capacity is approximately maxSegments*sizeRing items, coarser
// than BoundedItemAdapter's exact count but cheaper, since no counter
// needs updating on every successful push or pop that lands within an
// already-linked segment.
//
// Racing pushers can read stale segment counters and briefly overshoot
// maxSegments by one; the thread that links a successor re-reads the
// counters after linking and, if the chain is now over budget, closes
// that successor via ForceClose so it accepts no further pushes.
type BoundedSegmentAdapter[S any, PS ringSegment[S]] struct {
	sizeRing    uint64
	maxThreads  int
	maxSegments uint64
	head        atomic.Pointer[S]
	tail        atomic.Pointer[S]
	segmentTail atomix.Uint64
	segmentHead atomix.Uint64
	hp          *hazardRegistry[S]
	newSegment  func(start uint64) PS
	draining    atomix.Bool
}

// NewBoundedSegmentAdapter constructs a BoundedSegmentAdapter of
// sizeRing-slot segments, capped at maxSegments live segments.
func NewBoundedSegmentAdapter[S any, PS ringSegment[S]](sizeRing uint64, maxThreads int, maxSegments uint64, newSegment func(start uint64) PS) *BoundedSegmentAdapter[S, PS] {
	if maxSegments == 0 {
		panic("mpmcq: BoundedSegmentAdapter requires maxSegments > 0")
	}
	a := &BoundedSegmentAdapter[S, PS]{
		sizeRing:    sizeRing,
		maxThreads:  maxThreads,
		maxSegments: maxSegments,
		hp:          newHazardRegistry[S](2, maxThreads),
		newSegment:  newSegment,
	}
	sentinel := newSegment(0)
	a.head.Store((*S)(sentinel))
	a.tail.Store((*S)(sentinel))
	return a
}

// NewBoundedSegmentCRQ builds a BoundedSegmentAdapter of CRQSeg segments.
func NewBoundedSegmentCRQ(segmentSize int, maxThreads int, maxSegments int) *BoundedSegmentAdapter[CRQSeg, *CRQSeg] {
	return NewBoundedSegmentAdapter[CRQSeg, *CRQSeg](uint64(segmentSize), maxThreads, uint64(maxSegments), func(start uint64) *CRQSeg {
		return newCRQSeg(segmentSize, maxThreads, start)
	})
}

// NewBoundedSegmentPRQ builds a BoundedSegmentAdapter of PRQSeg segments.
func NewBoundedSegmentPRQ(segmentSize int, maxThreads int, maxSegments int) *BoundedSegmentAdapter[PRQSeg, *PRQSeg] {
	return NewBoundedSegmentAdapter[PRQSeg, *PRQSeg](uint64(segmentSize), maxThreads, uint64(maxSegments), func(start uint64) *PRQSeg {
		return newPRQSeg(segmentSize, maxThreads, start)
	})
}

// NewBoundedSegmentMTQ builds a BoundedSegmentAdapter of unbounded MTQSeg
// segments.
func NewBoundedSegmentMTQ(segmentSize int, maxThreads int, maxSegments int) *BoundedSegmentAdapter[MTQSeg, *MTQSeg] {
	return NewBoundedSegmentAdapter[MTQSeg, *MTQSeg](uint64(segmentSize), maxThreads, uint64(maxSegments), func(start uint64) *MTQSeg {
		return newMTQSeg(segmentSize, maxThreads, start, false)
	})
}

// NewBoundedSegmentFAA builds a BoundedSegmentAdapter of FAASeg segments.
// Since FAASeg's Push never fails, the adapter never allocates a second
// segment in practice: the bound only bites for the ring-based segment
// kinds, which close and force a successor to be minted.
func NewBoundedSegmentFAA(segmentSize int, maxThreads int, maxSegments int) *BoundedSegmentAdapter[FAASeg, *FAASeg] {
	return NewBoundedSegmentAdapter[FAASeg, *FAASeg](uint64(segmentSize), maxThreads, uint64(maxSegments), func(start uint64) *FAASeg {
		return newFAASeg(segmentSize, maxThreads, start)
	})
}

// Push implements Queue.
func (a *BoundedSegmentAdapter[S, PS]) Push(item unsafe.Pointer, tid int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	if a.draining.LoadAcquire() {
		return ErrWouldBlock
	}
	ltail := a.hp.Protect(kHPBoundedSegmentTail, &a.tail, tid)
	for {
		ltail2 := a.tail.Load()
		if ltail2 != ltail {
			ltail = a.hp.ProtectValue(kHPBoundedSegmentTail, ltail2, tid)
			continue
		}

		nextSlot := PS(ltail).Next()
		lnext := nextSlot.Load()
		if lnext != nil {
			if a.tail.CompareAndSwap(ltail, lnext) {
				ltail = a.hp.ProtectValue(kHPBoundedSegmentTail, lnext, tid)
			} else {
				ltail = a.hp.Protect(kHPBoundedSegmentTail, &a.tail, tid)
			}
			continue
		}

		if err := PS(ltail).Push(item, tid); err == nil {
			a.hp.Clear(kHPBoundedSegmentTail, tid)
			return nil
		}

		currentTail := a.segmentTail.LoadAcquire()
		currentHead := a.segmentHead.LoadAcquire()
		if currentTail-currentHead+1 >= a.maxSegments {
			a.hp.Clear(kHPBoundedSegmentTail, tid)
			return ErrWouldBlock
		}

		newTail := a.newSegment(PS(ltail).NextSegmentStartIndex())
		_ = newTail.Push(item, tid)

		if nextSlot.CompareAndSwap(nil, (*S)(newTail)) {
			a.tail.CompareAndSwap(ltail, (*S)(newTail))
			currentTail = a.segmentTail.LoadAcquire()
			currentHead = a.segmentHead.LoadAcquire()
			if currentTail+1-currentHead >= a.maxSegments {
				newTail.ForceClose()
			}
			a.segmentTail.AddAcqRel(1)
			a.hp.Clear(kHPBoundedSegmentTail, tid)
			return nil
		}
		actual := nextSlot.Load()
		ltail = a.hp.ProtectValue(kHPBoundedSegmentTail, actual, tid)
	}
}

// Pop implements Queue.
func (a *BoundedSegmentAdapter[S, PS]) Pop(tid int) (unsafe.Pointer, error) {
	lhead := a.hp.Protect(kHPBoundedSegmentHead, &a.head, tid)
	for {
		lhead2 := a.head.Load()
		if lhead2 != lhead {
			lhead = a.hp.ProtectValue(kHPBoundedSegmentHead, lhead2, tid)
			continue
		}

		item, err := PS(lhead).Pop(tid)
		if err != nil {
			lnext := PS(lhead).Next().Load()
			if lnext != nil {
				item, err = PS(lhead).Pop(tid)
				if err != nil {
					if a.head.CompareAndSwap(lhead, lnext) {
						a.hp.Retire(lhead, tid)
						a.segmentHead.AddAcqRel(1)
						lhead = a.hp.ProtectValue(kHPBoundedSegmentHead, lnext, tid)
					} else {
						lhead = a.hp.ProtectValue(kHPBoundedSegmentHead, lhead, tid)
					}
					continue
				}
			}
		}

		a.hp.Clear(kHPBoundedSegmentHead, tid)
		return item, err
	}
}

// Length implements Queue. Approximate, as for LinkedAdapter.
func (a *BoundedSegmentAdapter[S, PS]) Length(tid int) int {
	lhead := a.hp.Protect(kHPBoundedSegmentHead, &a.head, tid)
	ltail := a.hp.Protect(kHPBoundedSegmentTail, &a.tail, tid)
	t := PS(ltail).TailIndexValue()
	h := PS(lhead).HeadIndex()
	a.hp.ClearAll(tid)
	if t > h {
		return int(t - h)
	}
	return 0
}

// Capacity implements Queue: one segment's size, not the adapter's
// overall maxSegments*sizeRing bound.
func (a *BoundedSegmentAdapter[S, PS]) Capacity() int {
	return int(a.sizeRing)
}

// SegmentCount returns the number of segments ever linked into the
// chain (monotonic, not current live count).
func (a *BoundedSegmentAdapter[S, PS]) SegmentCount() uint64 {
	return a.segmentTail.LoadAcquire()
}

// ClassName implements Queue.
func (a *BoundedSegmentAdapter[S, PS]) ClassName(padding bool) string {
	return "BoundedSegment" + PS(a.head.Load()).ClassName(padding)
}

// Drain puts the adapter into draining mode and every segment currently
// reachable from head along with it.
func (a *BoundedSegmentAdapter[S, PS]) Drain() {
	a.draining.StoreRelease(true)
	for cur := a.head.Load(); cur != nil; cur = PS(cur).Next().Load() {
		PS(cur).Drain()
	}
}

// Draining reports whether Drain has been called on the adapter.
func (a *BoundedSegmentAdapter[S, PS]) Draining() bool {
	return a.draining.LoadAcquire()
}
