// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import "unsafe"

// Queue is the uniform contract every ring-segment, adapter, SPSC ring,
// All2All matrix and the mutex baseline implement.
//
// Items are caller-owned opaque pointers. The queue never dereferences,
// copies or frees them; it only moves the pointer value from a Push call
// to a later Pop call, preserving FIFO order among pushes made by the
// same tid.
type Queue interface {
	// Push inserts item, returning ErrWouldBlock if a bounded queue is
	// currently full. item must not be nil.
	Push(item unsafe.Pointer, tid int) error

	// Pop removes and returns the oldest available item, returning
	// ErrWouldBlock if the queue is currently empty.
	Pop(tid int) (unsafe.Pointer, error)

	// Length returns an approximation of the number of items currently
	// enqueued. tid is accepted for implementations that consult the
	// hazard-pointer table while estimating head/tail and may be ignored
	// by implementations that track an exact counter.
	Length(tid int) int

	// Capacity returns the queue's configured size. A single ring
	// segment or SPSC ring reports its ring size; FAASeg, LinkedAdapter
	// and BoundedSegmentAdapter report the per-node or per-segment size,
	// not a bound on total queued items; BoundedItemAdapter reports its
	// item cap; All2All reports the sum of its lanes' capacities; and
	// MutexQueue reports its bound, 0 meaning unbounded.
	Capacity() int

	// ClassName returns a stable identifier for the concrete queue type,
	// e.g. "LinkedCRQueue/padded". padding controls whether the
	// "/padded" suffix is appended when the cell layout is padded.
	ClassName(padding bool) string
}

// Drainer is implemented by adapters and segments that support draining:
// once Drain is called, every subsequent Push returns ErrWouldBlock
// immediately regardless of remaining capacity, while Pop keeps servicing
// whatever was already enqueued. It is used to empty a queue
// deterministically at shutdown without racing new pushes.
type Drainer interface {
	// Drain puts the queue into draining mode.
	Drain()

	// Draining reports whether Drain has been called.
	Draining() bool
}

