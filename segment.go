// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// closedBit marks a segment's tail ticket as closed: no further pushes
// may land on this segment, and a linked adapter must allocate (or
// advance to) a successor. Mirrors the original suite's top-bit-of-a-
// 64-bit-ticket encoding.
const closedBit = uint64(1) << 63

// segmentBase is embedded by the ring-segment kinds CRQSeg, PRQSeg and
// MTQSeg (FAASeg keeps its own equivalent fields) to share the
// bookkeeping LinkedAdapter,
// BoundedItemAdapter and BoundedSegmentAdapter all rely on: the
// head/tail tickets, the closed-segment bit, the intrusive next link,
// and drain/NUMA-hint state. S is the concrete segment type embedding
// this base, so Next() can hand back a pointer to the right type without
// a cast.
type segmentBase[S any] struct {
	head     atomix.Uint64
	tail     atomix.Uint64
	nextSeg  atomic.Pointer[S]
	draining atomix.Bool
	cluster  atomix.Int32 // NUMA hint, see Cluster/SetCluster; 0 until SetCluster is called
}

// TailIndex strips the closed bit from a raw tail ticket.
func (b *segmentBase[S]) TailIndex(t uint64) uint64 {
	return t &^ closedBit
}

// IsClosedTail reports whether a raw tail ticket has the closed bit set.
func (b *segmentBase[S]) IsClosedTail(t uint64) bool {
	return t&closedBit != 0
}

// IsClosed reports whether the segment is currently closed.
func (b *segmentBase[S]) IsClosed() bool {
	return b.IsClosedTail(b.tail.LoadAcquire())
}

// SetStartIndex initializes head and tail to the same ticket, used when
// a freshly allocated segment picks up where its predecessor left off.
func (b *segmentBase[S]) SetStartIndex(i uint64) {
	b.head.StoreRelaxed(i)
	b.tail.StoreRelaxed(i)
}

// FixState reconciles head running ahead of tail, which the
// fetch-and-add rings (CRQSeg, PRQSeg) can produce under an unbalanced
// consumer load: consumers
// fetch-and-add head unconditionally, so head can temporarily exceed
// tail before a producer catches up.
func (b *segmentBase[S]) FixState() {
	for {
		t := b.tail.LoadAcquire()
		h := b.head.LoadAcquire()
		if b.tail.LoadAcquire() != t {
			continue
		}
		if h > t {
			if b.tail.CompareAndSwapAcqRel(t, h) {
				return
			}
			continue
		}
		return
	}
}

// LengthApprox returns tail-head, floored at zero. Exact for the
// CAS-loop MTQSeg, an approximation for the fetch-and-add rings (CRQSeg,
// PRQSeg) under concurrent access.
func (b *segmentBase[S]) LengthApprox() int {
	t := int64(b.TailIndex(b.tail.LoadAcquire()))
	h := int64(b.head.LoadAcquire())
	if t > h {
		return int(t - h)
	}
	return 0
}

// CloseSegment sets the closed bit on the tail ticket. When force is
// false it only succeeds if the tail is still exactly tailTicket+1 (a
// cooperative close: the caller observed the segment was just filled and
// nobody else has pushed since); when force is true it unconditionally
// ORs the bit in and always succeeds, used as an escape hatch after
// a kind's close budget (tryCloseCRQBudget, tryClosePRQBudget,
// tryCloseMTQBudget) of failed attempts at the cooperative form.
func (b *segmentBase[S]) CloseSegment(tailTicket uint64, force bool) bool {
	if force {
		for {
			cur := b.tail.LoadAcquire()
			if cur&closedBit != 0 {
				return true
			}
			if b.tail.CompareAndSwapAcqRel(cur, cur|closedBit) {
				return true
			}
		}
	}
	want := tailTicket + 1
	return b.tail.CompareAndSwapAcqRel(want, want|closedBit)
}

// ForceClose unconditionally sets the closed bit, ignoring whatever
// ticket the tail is currently at.
func (b *segmentBase[S]) ForceClose() {
	b.CloseSegment(0, true)
}

// IsEmpty reports whether head has caught up with (or passed) tail.
func (b *segmentBase[S]) IsEmpty() bool {
	h := b.head.LoadAcquire()
	t := b.TailIndex(b.tail.LoadAcquire())
	return h >= t
}

// HeadIndex returns the raw head ticket.
func (b *segmentBase[S]) HeadIndex() uint64 {
	return b.head.LoadAcquire()
}

// TailIndexValue returns the tail ticket with the closed bit stripped.
func (b *segmentBase[S]) TailIndexValue() uint64 {
	return b.TailIndex(b.tail.LoadAcquire())
}

// NextSegmentStartIndex returns the ticket a newly allocated successor
// segment should start counting from: one less than this segment's tail,
// since the adapter always pushes the item that triggered the new
// allocation onto the successor at the ticket the failed push would have
// used.
func (b *segmentBase[S]) NextSegmentStartIndex() uint64 {
	return b.TailIndexValue() - 1
}

// Next returns the atomic pointer slot linking to the successor segment.
func (b *segmentBase[S]) Next() *atomic.Pointer[S] {
	return &b.nextSeg
}

// Drain puts the segment into draining mode.
func (b *segmentBase[S]) Drain() {
	b.draining.StoreRelease(true)
}

// Draining reports whether Drain has been called.
func (b *segmentBase[S]) Draining() bool {
	return b.draining.LoadAcquire()
}

// Cluster returns the NUMA cluster hint an external dispatcher may have
// set via SetCluster, or 0 if SetCluster was never called. There is no
// build tag that disables it; it is never consulted for correctness, only
// as a scheduling hint.
func (b *segmentBase[S]) Cluster() int32 {
	return b.cluster.LoadAcquire()
}

// SetCluster records a NUMA cluster hint.
func (b *segmentBase[S]) SetCluster(c int32) {
	b.cluster.StoreRelease(c)
}

// ringSegment is the generic constraint every concrete ring-segment kind
// satisfies so LinkedAdapter, BoundedItemAdapter and BoundedSegmentAdapter
// can be written once and instantiated over CRQSeg, PRQSeg, MTQSeg or
// FAASeg. S is the segment's value type (e.g. CRQSeg); PS is always *S,
// expressed through the self-referential pointer-receiver constraint so
// the adapters can call `new(S)`-shaped construction via a factory
// function while still getting PS's promoted methods at compile time.
type ringSegment[S any] interface {
	*S

	Push(item unsafe.Pointer, tid int) error
	Pop(tid int) (unsafe.Pointer, error)
	Length(tid int) int
	Capacity() int
	ClassName(padding bool) string

	// isClosedForPush reports whether a Push failure on this segment
	// means "closed, allocate a successor" (unbounded kinds) rather than
	// "really full" (bounded kinds never close).
	isClosedForPush() bool

	// IsClosed reports whether the segment is currently closed to pushes.
	// Always false for a kind whose isClosedForPush is always false.
	IsClosed() bool

	// ForceClose unconditionally marks the segment closed, used by
	// BoundedSegmentAdapter to cap a tail segment that was allocated but
	// pushed the adapter over its segment-count budget.
	ForceClose()

	Next() *atomic.Pointer[S]
	NextSegmentStartIndex() uint64
	TailIndexValue() uint64
	HeadIndex() uint64
	Drain()
	Draining() bool
}
