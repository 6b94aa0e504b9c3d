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
	kHPBoundedItemTail = 0
	kHPBoundedItemHead = 1
)

// BoundedItemAdapter caps an unbounded segment chain at an exact item
// count, checked against an atomic push/pop counter pair rather than
// against the chain's actual segment count: Push refuses once
// itemsPushed-itemsPopped reaches sizeRing, independent of how many
// segments happen to be linked at that moment. The same sizeRing value
// both bounds the adapter's total item count and sizes each individual
// segment, so in practice at most two segments are ever live: the
// counter check stops new pushes well before a second segment could
// fill.
type BoundedItemAdapter[S any, PS ringSegment[S]] struct {
	sizeRing    uint64
	maxThreads  int
	head        atomic.Pointer[S]
	tail        atomic.Pointer[S]
	itemsPushed atomix.Uint64
	itemsPopped atomix.Uint64
	hp          *hazardRegistry[S]
	newSegment  func(start uint64) PS
	draining    atomix.Bool
}

// NewBoundedItemAdapter constructs a BoundedItemAdapter capped at
// sizeRing items total, with segments built by newSegment.
func NewBoundedItemAdapter[S any, PS ringSegment[S]](sizeRing uint64, maxThreads int, newSegment func(start uint64) PS) *BoundedItemAdapter[S, PS] {
	a := &BoundedItemAdapter[S, PS]{
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

// NewBoundedItemCRQ builds a BoundedItemAdapter of CRQSeg segments.
func NewBoundedItemCRQ(size int, maxThreads int) *BoundedItemAdapter[CRQSeg, *CRQSeg] {
	return NewBoundedItemAdapter[CRQSeg, *CRQSeg](uint64(size), maxThreads, func(start uint64) *CRQSeg {
		return newCRQSeg(size, maxThreads, start)
	})
}

// NewBoundedItemPRQ builds a BoundedItemAdapter of PRQSeg segments.
func NewBoundedItemPRQ(size int, maxThreads int) *BoundedItemAdapter[PRQSeg, *PRQSeg] {
	return NewBoundedItemAdapter[PRQSeg, *PRQSeg](uint64(size), maxThreads, func(start uint64) *PRQSeg {
		return newPRQSeg(size, maxThreads, start)
	})
}

// NewBoundedItemMTQ builds a BoundedItemAdapter of unbounded MTQSeg
// segments (the adapter, not the segment, enforces the bound here).
func NewBoundedItemMTQ(size int, maxThreads int) *BoundedItemAdapter[MTQSeg, *MTQSeg] {
	return NewBoundedItemAdapter[MTQSeg, *MTQSeg](uint64(size), maxThreads, func(start uint64) *MTQSeg {
		return newMTQSeg(size, maxThreads, start, false)
	})
}

// NewBoundedItemFAA builds a BoundedItemAdapter of FAASeg segments.
func NewBoundedItemFAA(size int, maxThreads int) *BoundedItemAdapter[FAASeg, *FAASeg] {
	return NewBoundedItemAdapter[FAASeg, *FAASeg](uint64(size), maxThreads, func(start uint64) *FAASeg {
		return newFAASeg(size, maxThreads, start)
	})
}

func (a *BoundedItemAdapter[S, PS]) lengthAcquire() uint64 {
	pushed := a.itemsPushed.LoadAcquire()
	popped := a.itemsPopped.LoadAcquire()
	if pushed > popped {
		return pushed - popped
	}
	return 0
}

// Push implements Queue.
func (a *BoundedItemAdapter[S, PS]) Push(item unsafe.Pointer, tid int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	if a.draining.LoadAcquire() {
		return ErrWouldBlock
	}
	ltail := a.hp.Protect(kHPBoundedItemTail, &a.tail, tid)
	for {
		if a.lengthAcquire() >= a.sizeRing {
			a.hp.Clear(kHPBoundedItemTail, tid)
			return ErrWouldBlock
		}

		ltail2 := a.tail.Load()
		if ltail2 != ltail {
			ltail = a.hp.ProtectValue(kHPBoundedItemTail, ltail2, tid)
			continue
		}

		nextSlot := PS(ltail).Next()
		lnext := nextSlot.Load()
		if lnext != nil {
			if a.tail.CompareAndSwap(ltail, lnext) {
				ltail = a.hp.ProtectValue(kHPBoundedItemTail, lnext, tid)
			} else {
				ltail = a.hp.Protect(kHPBoundedItemTail, &a.tail, tid)
			}
			continue
		}

		if err := PS(ltail).Push(item, tid); err == nil {
			a.itemsPushed.AddAcqRel(1)
			a.hp.Clear(kHPBoundedItemTail, tid)
			return nil
		} else if !PS(ltail).isClosedForPush() {
			return err
		}

		newTail := a.newSegment(PS(ltail).NextSegmentStartIndex())
		_ = newTail.Push(item, tid)

		if nextSlot.CompareAndSwap(nil, (*S)(newTail)) {
			a.itemsPushed.AddAcqRel(1)
			a.tail.CompareAndSwap(ltail, (*S)(newTail))
			a.hp.Clear(kHPBoundedItemTail, tid)
			return nil
		}
		actual := nextSlot.Load()
		ltail = a.hp.ProtectValue(kHPBoundedItemTail, actual, tid)
	}
}

// Pop implements Queue.
func (a *BoundedItemAdapter[S, PS]) Pop(tid int) (unsafe.Pointer, error) {
	lhead := a.hp.Protect(kHPBoundedItemHead, &a.head, tid)
	for {
		lhead2 := a.head.Load()
		if lhead2 != lhead {
			lhead = a.hp.ProtectValue(kHPBoundedItemHead, lhead2, tid)
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
						lhead = a.hp.ProtectValue(kHPBoundedItemHead, lnext, tid)
					} else {
						lhead = a.hp.ProtectValue(kHPBoundedItemHead, lhead, tid)
					}
					continue
				}
			}
		}

		a.hp.Clear(kHPBoundedItemHead, tid)
		if err == nil {
			a.itemsPopped.AddAcqRel(1)
		}
		return item, err
	}
}

// Length implements Queue: exact, unlike LinkedAdapter's approximation,
// since BoundedItemAdapter already tracks push/pop counts for the bound
// check.
func (a *BoundedItemAdapter[S, PS]) Length(_ int) int {
	pushed := a.itemsPushed.LoadRelaxed()
	popped := a.itemsPopped.LoadRelaxed()
	if pushed > popped {
		return int(pushed - popped)
	}
	return 0
}

// Capacity implements Queue.
func (a *BoundedItemAdapter[S, PS]) Capacity() int {
	return int(a.sizeRing)
}

// ClassName implements Queue.
func (a *BoundedItemAdapter[S, PS]) ClassName(padding bool) string {
	return "BoundedItem" + PS(a.head.Load()).ClassName(padding)
}

// Drain puts the adapter into draining mode and every segment currently
// reachable from head along with it.
func (a *BoundedItemAdapter[S, PS]) Drain() {
	a.draining.StoreRelease(true)
	for cur := a.head.Load(); cur != nil; cur = PS(cur).Next().Load() {
		PS(cur).Drain()
	}
}

// Draining reports whether Drain has been called on the adapter.
func (a *BoundedItemAdapter[S, PS]) Draining() bool {
	return a.draining.LoadAcquire()
}
