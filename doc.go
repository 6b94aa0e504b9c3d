// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpmcq provides lock-free multi-producer / multi-consumer FIFO
// queues of pointer-sized elements.
//
// The package is a catalogue of ring-segment algorithms (CRQ-style 2-word
// CAS, PRQ-style single-word CAS with reserved sentinels, MTQ-style CAS
// loop, FAA-style generational arrays) combined with adapters that chain
// segments into an unbounded or bounded queue, plus a padded SPSC ring and
// an All2All fan-in/out matrix that emulates MPMC through a P x C grid of
// SPSC rings.
//
// # Queue contract
//
// Every concrete queue type exposes the same uniform contract:
//
//	Push(item unsafe.Pointer, tid int) error
//	Pop(tid int) (unsafe.Pointer, error)
//	Length(tid int) int
//	Capacity() int
//	ClassName(padding bool) string
//
// Push and Pop return [ErrWouldBlock] rather than blocking: a full bounded
// queue on Push, an empty queue on Pop. Every other return value is nil,
// meaning the operation completed.
//
// Every caller-visible thread (producer or consumer goroutine) is assigned
// a stable tid in [0, maxThreads) for the lifetime of the queue. The tid
// indexes the hazard-pointer table and, for PRQ-style segments, mints the
// reserved sentinel used during the push handshake. Sharing a tid across
// two live goroutines breaks FIFO ordering silently; this package does not
// detect the misuse.
//
//	q := mpmcq.NewLinkedCRQ(1024, 8) // capacity hint 1024, up to 8 threads
//
//	// Producer goroutine (tid 0)
//	v := 42
//	backoff := iox.Backoff{}
//	for q.Push(unsafe.Pointer(&v), 0) != nil {
//	    backoff.Wait()
//	}
//
//	// Consumer goroutine (tid 1)
//	p, err := q.Pop(1)
//	if err == nil {
//	    got := *(*int)(p)
//	}
//
// # Queue families
//
// Ring-segment kinds (section 4 of the design): CRQ, PRQ, MTQ, FAA.
// Adapter kinds that wrap a ring-segment kind into a full queue: Linked
// (unbounded), BoundedItem (capped by live item count), BoundedSegment
// (capped by live segment count). The two are orthogonal; the catalogue in
// catalogue.go enumerates every combination plus a single-segment entry
// for each ring-segment kind (MTQ in its bounded mode), the SPSC ring,
// the All2All matrix, and the mutex baseline.
//
// # Non-blocking semantics
//
// Push and Pop never block. Push on a full bounded queue returns
// ErrWouldBlock and Pop on an empty queue returns a nil pointer with
// ErrWouldBlock, both immediately; the caller decides
// whether to retry, back off (code.hybscloud.com/iox.Backoff gives an
// adaptive spin-then-sleep helper, mirrored from this package's own
// internal retry loops which use code.hybscloud.com/spin.Wait), or drop
// the operation.
//
// # Memory reclamation
//
// Segments are reclaimed via a hazard-pointer registry (hazard.go):
// a thread publishes any segment pointer it is about to dereference into
// a slot indexed by its tid, and retirement scans every thread's slots
// before a segment is freed (left for the garbage collector to collect,
// since this package is garbage-collected Go rather than a manual-memory
// host — see DESIGN.md). Items pushed into the queue are never freed or
// copied by the queue; ownership transfers from producer to consumer by
// pointer, and the caller is responsible for the pointee's lifetime.
//
// # Race detection
//
// Go's race detector tracks explicit synchronization primitives and
// cannot observe happens-before relationships established purely through
// atomic memory orderings on separate variables. Several tests in this
// package are therefore gated behind the RaceEnabled constant and skip
// concurrent stress scenarios under `go test -race`, the same convention
// the wider pack of reference queue libraries in this ecosystem uses.
package mpmcq
