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
	kHPAdapterTail = 0
	kHPAdapterHead = 1
)

// LinkedAdapter chains an unbounded sequence of fixed-size ring segments
// into a single unbounded Queue: a Push that finds its current tail
// segment closed allocates a fresh segment, starting where the closed
// one left off, and links it in; a Pop that drains the head segment and
// finds a successor retires the exhausted one through the adapter's own
// hazard-pointer registry over segment pointers (distinct from any
// registry a segment kind uses internally, e.g. FAASeg's over its
// nodes).
//
// S is the concrete segment type (CRQSeg, PRQSeg, MTQSeg or FAASeg); PS
// is always *S, threaded through as a separate type parameter so the
// ringSegment constraint's promoted methods are available without a
// cast at every call site.
type LinkedAdapter[S any, PS ringSegment[S]] struct {
	sizeRing   uint64
	maxThreads int
	head       atomic.Pointer[S]
	tail       atomic.Pointer[S]
	hp         *hazardRegistry[S]
	newSegment func(start uint64) PS
	draining   atomix.Bool
}

// NewLinkedAdapter constructs a LinkedAdapter whose segments are built
// by newSegment, a closure over whatever per-segment sizing (and, for
// MTQSeg, boundedness) the caller's constructor wrapper needs. See
// NewLinkedCRQ, NewLinkedPRQ, NewLinkedMTQ and NewLinkedFAA for the
// concrete instantiations this package exports.
func NewLinkedAdapter[S any, PS ringSegment[S]](sizeRing uint64, maxThreads int, newSegment func(start uint64) PS) *LinkedAdapter[S, PS] {
	a := &LinkedAdapter[S, PS]{
		sizeRing:   sizeRing,
		maxThreads: maxThreads,
		hp:         newHazardRegistry[S](2, maxThreads),
		newSegment: newSegment,
	}
	sentinel := newSegment(0)
	a.head.Store((*S)(sentinel))
	a.tail.Store((*S)(sentinel))
	return a
}

// NewLinkedCRQ builds a LinkedAdapter of CRQSeg segments.
func NewLinkedCRQ(segmentSize int, maxThreads int) *LinkedAdapter[CRQSeg, *CRQSeg] {
	return NewLinkedAdapter[CRQSeg, *CRQSeg](uint64(segmentSize), maxThreads, func(start uint64) *CRQSeg {
		return newCRQSeg(segmentSize, maxThreads, start)
	})
}

// NewLinkedPRQ builds a LinkedAdapter of PRQSeg segments.
func NewLinkedPRQ(segmentSize int, maxThreads int) *LinkedAdapter[PRQSeg, *PRQSeg] {
	return NewLinkedAdapter[PRQSeg, *PRQSeg](uint64(segmentSize), maxThreads, func(start uint64) *PRQSeg {
		return newPRQSeg(segmentSize, maxThreads, start)
	})
}

// NewLinkedMTQ builds a LinkedAdapter of unbounded MTQSeg segments.
func NewLinkedMTQ(segmentSize int, maxThreads int) *LinkedAdapter[MTQSeg, *MTQSeg] {
	return NewLinkedAdapter[MTQSeg, *MTQSeg](uint64(segmentSize), maxThreads, func(start uint64) *MTQSeg {
		return newMTQSeg(segmentSize, maxThreads, start, false)
	})
}

// NewLinkedFAA builds a LinkedAdapter of FAASeg segments. FAASeg never
// closes on its own (a full node grows its own successor node), so in
// practice this adapter never allocates a second segment; it exists for
// uniformity with the other three families and so a caller can select
// any of the four kinds through the same constructor shape.
func NewLinkedFAA(segmentSize int, maxThreads int) *LinkedAdapter[FAASeg, *FAASeg] {
	return NewLinkedAdapter[FAASeg, *FAASeg](uint64(segmentSize), maxThreads, func(start uint64) *FAASeg {
		return newFAASeg(segmentSize, maxThreads, start)
	})
}

// Push implements Queue.
func (a *LinkedAdapter[S, PS]) Push(item unsafe.Pointer, tid int) error {
	if a.draining.LoadAcquire() {
		return ErrWouldBlock
	}
	ltail := a.hp.Protect(kHPAdapterTail, &a.tail, tid)
	for {
		ltail2 := a.tail.Load()
		if ltail2 != ltail {
			ltail = a.hp.ProtectValue(kHPAdapterTail, ltail2, tid)
			continue
		}

		nextSlot := PS(ltail).Next()
		lnext := nextSlot.Load()
		if lnext != nil {
			if a.tail.CompareAndSwap(ltail, lnext) {
				ltail = a.hp.ProtectValue(kHPAdapterTail, lnext, tid)
			} else {
				ltail = a.hp.Protect(kHPAdapterTail, &a.tail, tid)
			}
			continue
		}

		if err := PS(ltail).Push(item, tid); err == nil {
			a.hp.Clear(kHPAdapterTail, tid)
			return nil
		} else if !PS(ltail).isClosedForPush() {
			return err
		}

		newTail := a.newSegment(PS(ltail).NextSegmentStartIndex())
		_ = newTail.Push(item, tid)

		if nextSlot.CompareAndSwap(nil, (*S)(newTail)) {
			a.tail.CompareAndSwap(ltail, (*S)(newTail))
			a.hp.Clear(kHPAdapterTail, tid)
			return nil
		}
		actual := nextSlot.Load()
		ltail = a.hp.ProtectValue(kHPAdapterTail, actual, tid)
	}
}

// Pop implements Queue.
func (a *LinkedAdapter[S, PS]) Pop(tid int) (unsafe.Pointer, error) {
	lhead := a.hp.Protect(kHPAdapterHead, &a.head, tid)
	for {
		lhead2 := a.head.Load()
		if lhead2 != lhead {
			lhead = a.hp.ProtectValue(kHPAdapterHead, lhead2, tid)
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
						lhead = a.hp.ProtectValue(kHPAdapterHead, lnext, tid)
					} else {
						lhead = a.hp.ProtectValue(kHPAdapterHead, lhead, tid)
					}
					continue
				}
			}
		}

		a.hp.Clear(kHPAdapterHead, tid)
		return item, err
	}
}

// Length implements Queue: the cumulative enqueue count on the current
// tail segment minus the cumulative dequeue count on the current head
// segment, which (because successor segments start counting where
// their predecessor left off) stays correct across a segment boundary.
func (a *LinkedAdapter[S, PS]) Length(tid int) int {
	lhead := a.hp.Protect(kHPAdapterHead, &a.head, tid)
	ltail := a.hp.Protect(kHPAdapterTail, &a.tail, tid)
	t := PS(ltail).TailIndexValue()
	h := PS(lhead).HeadIndex()
	a.hp.ClearAll(tid)
	if t > h {
		return int(t - h)
	}
	return 0
}

// Capacity implements Queue: the size of one segment, not a bound on
// the adapter as a whole, since LinkedAdapter grows without limit.
func (a *LinkedAdapter[S, PS]) Capacity() int {
	return int(a.sizeRing)
}

// ClassName implements Queue.
func (a *LinkedAdapter[S, PS]) ClassName(padding bool) string {
	return "Linked" + PS(a.head.Load()).ClassName(padding)
}

// Drain puts the adapter into draining mode, so every subsequent Push
// fails regardless of how many successor segments get linked in later,
// and also puts every segment currently reachable from head into
// draining mode, following the next chain.
func (a *LinkedAdapter[S, PS]) Drain() {
	a.draining.StoreRelease(true)
	for cur := a.head.Load(); cur != nil; cur = PS(cur).Next().Load() {
		PS(cur).Drain()
	}
}

// Draining reports whether Drain has been called on the adapter.
func (a *LinkedAdapter[S, PS]) Draining() bool {
	return a.draining.LoadAcquire()
}
