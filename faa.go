// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const (
	kHPTail = 0
	kHPHead = 1
)

// faaNode is one block of the FAA generational array: a fixed run of
// bufSize cells plus two independent fetch-and-add cursors, one per end.
// Producers and consumers race on reaching the end of a node exactly
// once, not on every cell, which is what makes the FAA family's hot path
// a single atomic add per operation instead of a CAS loop.
type faaNode struct {
	deqIdx     atomix.Uint64
	enqIdx     atomix.Uint64
	next       atomic.Pointer[faaNode]
	items      []faaCell
	startIndex uint64
}

// newFAANode allocates a node with bufSize cells. When item is non-nil
// it is pre-stored into cell 0 and enqIdx starts at 1 (the node's first
// producer already happened, by the caller handing it the item that
// triggered the node's allocation); otherwise enqIdx starts at 0, as for
// the sentinel node a fresh FAASeg begins with.
func newFAANode(item unsafe.Pointer, startIndex uint64, bufSize uint64) *faaNode {
	n := &faaNode{
		items:      make([]faaCell, bufSize),
		startIndex: startIndex,
	}
	if item != nil {
		n.items[0].val.StoreRelaxed(uintptr(item))
		n.enqIdx.StoreRelaxed(1)
	}
	return n
}

// FAASeg is the generational fetch-and-add array queue: unlike
// CRQSeg/PRQSeg/MTQSeg, it is already an unbounded chain of fixed-size
// nodes internally, so it never closes under LinkedAdapter — a full
// node grows a successor node on its own, the same way LinkedAdapter
// grows a successor segment for the other three families. FAASeg is
// usable standalone (it satisfies Queue on its own) and also satisfies
// ringSegment so it can sit under LinkedAdapter for uniformity, where it
// behaves as a segment that simply never asks its adapter for a
// successor.
//
// FAASeg carries its own hazard-pointer registry over its internal
// nodes (kHPTail, kHPHead), distinct from whatever registry an outer
// LinkedAdapter uses over FAASeg values themselves.
//
// FAASeg deliberately does not embed segmentBase: that type's
// head/tail tickets, IsEmpty and CloseSegment describe a fixed-size
// ring, and FAASeg has no such ring — it has a chain of nodes instead.
// Promoting those methods onto FAASeg would compile but answer
// questions FAASeg's own design makes meaningless. It keeps the same
// chain-adapter bookkeeping (next link, draining flag, cluster hint)
// segmentBase gives the ring families, just spelled out directly.
type FAASeg struct {
	headNode   atomic.Pointer[faaNode]
	tailNode   atomic.Pointer[faaNode]
	hp         *hazardRegistry[faaNode]
	bufSize    uint64
	maxThreads int

	nextSeg  atomic.Pointer[FAASeg]
	draining atomix.Bool
	cluster  atomix.Int32
}

// NewFAASeg constructs a standalone FAASeg with bufSize-cell nodes,
// supporting thread ids in [0, maxThreads).
func NewFAASeg(bufSize int, maxThreads int) *FAASeg {
	return newFAASeg(bufSize, maxThreads, 0)
}

func newFAASeg(bufSize int, maxThreads int, start uint64) *FAASeg {
	if bufSize <= 0 {
		panic("mpmcq: FAASeg buffer size must be > 0")
	}
	size := ringSize(uint64(bufSize))
	s := &FAASeg{
		hp:         newHazardRegistry[faaNode](2, maxThreads),
		bufSize:    size,
		maxThreads: maxThreads,
	}
	sentinel := newFAANode(nil, start, size)
	sentinel.enqIdx.StoreRelaxed(0)
	s.headNode.Store(sentinel)
	s.tailNode.Store(sentinel)
	return s
}

// Push implements Queue. Unlike the ring families, a full node grows
// its own successor rather than reporting ErrWouldBlock, so Push only
// ever fails once Drain has put the segment into draining mode.
func (s *FAASeg) Push(item unsafe.Pointer, tid int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	if tid < 0 || tid >= s.maxThreads {
		panic("mpmcq: tid out of range")
	}
	if s.Draining() {
		return ErrWouldBlock
	}
	sw := spin.Wait{}
	for {
		ltail := s.hp.Protect(kHPTail, &s.tailNode, tid)
		idx := ltail.enqIdx.AddAcqRel(1) - 1
		if idx > s.bufSize-1 {
			if ltail != s.tailNode.Load() {
				continue
			}
			lnext := ltail.next.Load()
			if lnext == nil {
				newNode := newFAANode(item, ltail.startIndex+s.bufSize, s.bufSize)
				if ltail.next.CompareAndSwap(nil, newNode) {
					s.tailNode.CompareAndSwap(ltail, newNode)
					s.hp.Clear(kHPTail, tid)
					return nil
				}
				sw.Once()
				continue
			}
			s.tailNode.CompareAndSwap(ltail, lnext)
			continue
		}
		cell := &ltail.items[idx]
		if cell.val.CompareAndSwapAcqRel(0, uintptr(item)) {
			s.hp.Clear(kHPTail, tid)
			return nil
		}
		sw.Once()
	}
}

// Pop implements Queue.
func (s *FAASeg) Pop(tid int) (unsafe.Pointer, error) {
	if tid < 0 || tid >= s.maxThreads {
		panic("mpmcq: tid out of range")
	}
	taken := takenSentinel()
	sw := spin.Wait{}
	for {
		lhead := s.hp.Protect(kHPHead, &s.headNode, tid)
		for {
			idx := lhead.deqIdx.AddAcqRel(1) - 1
			if idx > s.bufSize-1 {
				lnext := lhead.next.Load()
				if lnext == nil {
					s.hp.Clear(kHPHead, tid)
					return nil, ErrWouldBlock
				}
				if s.headNode.CompareAndSwap(lhead, lnext) {
					s.hp.Retire(lhead, tid)
				}
				lhead = s.hp.Protect(kHPHead, &s.headNode, tid)
				continue
			}
			cell := &lhead.items[idx]
			itemVal := cell.val.LoadAcquire()
			for itemVal != taken && !cell.val.CompareAndSwapAcqRel(itemVal, taken) {
				sw.Once()
				itemVal = cell.val.LoadAcquire()
			}
			if itemVal != 0 && itemVal != taken {
				s.hp.Clear(kHPHead, tid)
				return unsafe.Pointer(itemVal), nil
			}
			t := lhead.enqIdx.LoadAcquire()
			if idx+1 >= t {
				if lhead.next.Load() != nil {
					continue
				}
				lhead.enqIdx.CompareAndSwapAcqRel(t, idx+1)
				s.hp.Clear(kHPHead, tid)
				return nil, ErrWouldBlock
			}
		}
	}
}

// Length implements Queue. Approximate, as with the other segment
// kinds under concurrent access: head and tail are read from whichever
// node each currently points to, which may be different nodes.
func (s *FAASeg) Length(tid int) int {
	lhead := s.hp.Protect(kHPHead, &s.headNode, tid)
	ltail := s.hp.Protect(kHPTail, &s.tailNode, tid)

	t := min(s.bufSize, ltail.enqIdx.LoadAcquire()) + ltail.startIndex
	h := min(s.bufSize, lhead.deqIdx.LoadAcquire()) + lhead.startIndex
	s.hp.ClearAll(tid)
	if t > h {
		return int(t - h)
	}
	return 0
}

// Capacity implements Queue: the per-node buffer size, not a bound on
// the queue as a whole, since FAASeg grows without limit.
func (s *FAASeg) Capacity() int {
	return int(s.bufSize)
}

// ClassName implements Queue.
func (s *FAASeg) ClassName(padding bool) string {
	if cellPadded && padding {
		return "FAAArrayQueue/padded"
	}
	return "FAAArrayQueue"
}

// isClosedForPush always reports false: a full FAASeg node allocates its
// own successor, so it never asks an owning LinkedAdapter to do it.
func (s *FAASeg) isClosedForPush() bool {
	return false
}

// IsClosed always reports false: FAASeg has no closed state, it simply
// keeps growing.
func (s *FAASeg) IsClosed() bool {
	return false
}

// ForceClose is a no-op: a bounded adapter that wants to cap a FAASeg's
// growth does so through its own item or segment counters, since FAASeg
// itself has nothing to close.
func (s *FAASeg) ForceClose() {}

// Next returns the atomic pointer slot linking to a successor FAASeg.
// LinkedAdapter never actually needs to follow it, since isClosedForPush
// is always false, but FAASeg satisfies ringSegment for uniformity with
// the other three segment kinds.
func (s *FAASeg) Next() *atomic.Pointer[FAASeg] {
	return &s.nextSeg
}

// NextSegmentStartIndex is never called in practice (FAASeg never
// closes), but is implemented for ringSegment conformance.
func (s *FAASeg) NextSegmentStartIndex() uint64 {
	return s.headNode.Load().startIndex
}

// TailIndexValue returns the cumulative number of items ever enqueued,
// mirroring segmentBase's method of the same name for the ring
// families: the tail node's local enqueue cursor plus that node's
// starting offset in the overall chain.
func (s *FAASeg) TailIndexValue() uint64 {
	t := s.tailNode.Load()
	return min(s.bufSize, t.enqIdx.LoadAcquire()) + t.startIndex
}

// HeadIndex returns the cumulative number of items ever dequeued, by
// the same reasoning as TailIndexValue.
func (s *FAASeg) HeadIndex() uint64 {
	h := s.headNode.Load()
	return min(s.bufSize, h.deqIdx.LoadAcquire()) + h.startIndex
}

// Drain puts the segment into draining mode.
func (s *FAASeg) Drain() {
	s.draining.StoreRelease(true)
}

// Draining reports whether Drain has been called.
func (s *FAASeg) Draining() bool {
	return s.draining.LoadAcquire()
}

// Cluster returns the NUMA cluster hint an external dispatcher may have
// set via SetCluster.
func (s *FAASeg) Cluster() int32 {
	return s.cluster.LoadAcquire()
}

// SetCluster records a NUMA cluster hint.
func (s *FAASeg) SetCluster(c int32) {
	s.cluster.StoreRelease(c)
}
