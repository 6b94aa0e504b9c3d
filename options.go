// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

// SegmentKind selects which ring-segment algorithm backs a queue built
// via Builder.
type SegmentKind int

const (
	// SegmentCRQ selects the ticket-based CRQ ring.
	SegmentCRQ SegmentKind = iota
	// SegmentPRQ selects the PRQ ring (single-word CAS with per-thread
	// reserved sentinels).
	SegmentPRQ
	// SegmentMTQ selects the MTQ ring (CAS loop on head/tail, no
	// fetch-and-add).
	SegmentMTQ
	// SegmentFAA selects the fetch-and-add array family.
	SegmentFAA
)

// AdapterKind selects how a ring segment is grown into a full queue.
type AdapterKind int

const (
	// AdapterSingle uses one segment with no successor: Push returns
	// ErrWouldBlock once the segment is full rather than growing. With
	// SegmentFAA the single FAASeg still grows its own node chain, so
	// Push never reports full.
	AdapterSingle AdapterKind = iota
	// AdapterLinked grows an unbounded chain of segments.
	AdapterLinked
	// AdapterBoundedItem caps an otherwise unbounded chain at an exact
	// item count.
	AdapterBoundedItem
	// AdapterBoundedSegment caps an otherwise unbounded chain at a fixed
	// number of live segments.
	AdapterBoundedSegment
)

// Options configures queue creation and algorithm selection, analogous
// to the teacher's Options/Builder but generalized to pick among the six
// orthogonal knobs this package exposes: segment kind, adapter kind,
// per-segment size, thread count, (for AdapterBoundedSegment) the
// segment budget, and (for All2All) the producer and consumer counts.
type Options struct {
	segment     SegmentKind
	adapter     AdapterKind
	segmentSize int
	maxThreads  int
	maxSegments int
	all2all     bool
	producers   int
	consumers   int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	q := mpmcq.New(1024, 8).Segment(mpmcq.SegmentPRQ).Linked().Build()
//	q := mpmcq.New(1024, 8).Segment(mpmcq.SegmentFAA).BoundedItem().Build()
type Builder struct {
	opts Options
}

// New creates a queue builder with the given per-segment size and
// maximum concurrent thread id. segmentSize rounds up to the next power
// of two where the selected segment kind requires it. Defaults to
// SegmentCRQ with AdapterLinked.
func New(segmentSize int, maxThreads int) *Builder {
	if segmentSize <= 0 {
		panic("mpmcq: segment size must be > 0")
	}
	if maxThreads <= 0 {
		panic("mpmcq: maxThreads must be > 0")
	}
	return &Builder{opts: Options{
		segment:     SegmentCRQ,
		adapter:     AdapterLinked,
		segmentSize: segmentSize,
		maxThreads:  maxThreads,
	}}
}

// Segment selects the ring-segment algorithm.
func (b *Builder) Segment(kind SegmentKind) *Builder {
	b.opts.segment = kind
	return b
}

// Single selects AdapterSingle: one segment, no growth.
func (b *Builder) Single() *Builder {
	b.opts.adapter = AdapterSingle
	return b
}

// Linked selects AdapterLinked: an unbounded chain of segments.
func (b *Builder) Linked() *Builder {
	b.opts.adapter = AdapterLinked
	return b
}

// BoundedItem selects AdapterBoundedItem, capped at segmentSize items.
func (b *Builder) BoundedItem() *Builder {
	b.opts.adapter = AdapterBoundedItem
	return b
}

// BoundedSegment selects AdapterBoundedSegment, capped at maxSegments
// live segments of segmentSize each.
func (b *Builder) BoundedSegment(maxSegments int) *Builder {
	b.opts.adapter = AdapterBoundedSegment
	b.opts.maxSegments = maxSegments
	return b
}

// All2All selects the All2All producers x consumers matrix instead of a
// segment/adapter combination: segmentSize (from New) becomes each
// lane's capacity, and segment/adapter selection is ignored.
func (b *Builder) All2All(producers, consumers int) *Builder {
	b.opts.all2all = true
	b.opts.producers = producers
	b.opts.consumers = consumers
	return b
}

// Build constructs the Queue described by the accumulated options.
func (b *Builder) Build() Queue {
	o := b.opts
	if o.all2all {
		return NewAll2All(o.producers, o.consumers, o.segmentSize)
	}
	switch o.adapter {
	case AdapterSingle:
		switch o.segment {
		case SegmentCRQ:
			return NewCRQSeg(o.segmentSize, o.maxThreads)
		case SegmentPRQ:
			return NewPRQSeg(o.segmentSize, o.maxThreads)
		case SegmentMTQ:
			return NewBoundedMTQSeg(o.segmentSize, o.maxThreads)
		case SegmentFAA:
			return NewFAASeg(o.segmentSize, o.maxThreads)
		}
	case AdapterLinked:
		switch o.segment {
		case SegmentCRQ:
			return NewLinkedCRQ(o.segmentSize, o.maxThreads)
		case SegmentPRQ:
			return NewLinkedPRQ(o.segmentSize, o.maxThreads)
		case SegmentMTQ:
			return NewLinkedMTQ(o.segmentSize, o.maxThreads)
		case SegmentFAA:
			return NewLinkedFAA(o.segmentSize, o.maxThreads)
		}
	case AdapterBoundedItem:
		switch o.segment {
		case SegmentCRQ:
			return NewBoundedItemCRQ(o.segmentSize, o.maxThreads)
		case SegmentPRQ:
			return NewBoundedItemPRQ(o.segmentSize, o.maxThreads)
		case SegmentMTQ:
			return NewBoundedItemMTQ(o.segmentSize, o.maxThreads)
		case SegmentFAA:
			return NewBoundedItemFAA(o.segmentSize, o.maxThreads)
		}
	case AdapterBoundedSegment:
		switch o.segment {
		case SegmentCRQ:
			return NewBoundedSegmentCRQ(o.segmentSize, o.maxThreads, o.maxSegments)
		case SegmentPRQ:
			return NewBoundedSegmentPRQ(o.segmentSize, o.maxThreads, o.maxSegments)
		case SegmentMTQ:
			return NewBoundedSegmentMTQ(o.segmentSize, o.maxThreads, o.maxSegments)
		case SegmentFAA:
			return NewBoundedSegmentFAA(o.segmentSize, o.maxThreads, o.maxSegments)
		}
	}
	panic("mpmcq: unreachable option combination")
}
