// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// ptrSize is the size of a pointer in bytes, used for the raw pointer
// arithmetic below that sidesteps slice bounds checking on the hot path.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// SPSC is a single-producer single-consumer bounded ring, Lamport's
// classic design with each side caching its view of the other's index
// so the common case never touches the other side's cache line. Used
// standalone, and as the building block All2All wires into a matrix to
// emulate an MPMC queue from P*C independent SPSC lanes.
type SPSC struct {
	_          pad64
	head       atomix.Uint64 // consumer-owned
	_          pad64
	cachedTail uint64 // consumer's cached view of tail
	_          pad64
	tail       atomix.Uint64 // producer-owned
	_          pad64
	cachedHead uint64 // producer's cached view of head
	_          pad64
	buffer     []unsafe.Pointer
	mask       uint64
}

// NewSPSC creates an SPSC ring. capacity rounds up to the next power of
// two.
func NewSPSC(capacity int) *SPSC {
	if capacity < 2 {
		panic("mpmcq: SPSC capacity must be >= 2")
	}
	n := nextPowTwo(uint64(capacity))
	return &SPSC{
		buffer: make([]unsafe.Pointer, n),
		mask:   n - 1,
	}
}

// Push implements Queue. tid is accepted for interface conformance and
// ignored: callers must guarantee a single producer goroutine.
func (q *SPSC) Push(item unsafe.Pointer, _ int) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return ErrWouldBlock
		}
	}
	*(*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(tail&q.mask)*ptrSize)) = item
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Pop implements Queue. tid is accepted for interface conformance and
// ignored: callers must guarantee a single consumer goroutine.
func (q *SPSC) Pop(_ int) (unsafe.Pointer, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return nil, ErrWouldBlock
		}
	}
	item := *(*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(head&q.mask)*ptrSize))
	q.head.StoreRelease(head + 1)
	return item, nil
}

// Length implements Queue: exact for an SPSC ring, since there is only
// ever one writer of tail and one of head.
func (q *SPSC) Length(_ int) int {
	t := q.tail.LoadAcquire()
	h := q.head.LoadAcquire()
	if t > h {
		return int(t - h)
	}
	return 0
}

// Capacity implements Queue.
func (q *SPSC) Capacity() int {
	return int(q.mask + 1)
}

// ClassName implements Queue.
func (q *SPSC) ClassName(padding bool) string {
	if padding {
		return "SPSCQueue/padded"
	}
	return "SPSCQueue"
}
