// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !nohazard

package mpmcq

import "sync/atomic"

// maxThreadsHP bounds the thread-id range every adapter's hazard
// registry supports. tid values passed to Push/Pop/Length must stay
// below this.
const maxThreadsHP = 256

// hpPerThread bounds how many distinct hazard slots one thread may hold
// concurrently. LinkedAdapter uses two (tail, head); BoundedItemAdapter
// and BoundedSegmentAdapter follow the same two-slot convention.
const hpPerThread = 11

// hazardRow is one thread's row of hazard slots, padded to its own cache
// line so that one thread publishing a protection doesn't contend with
// another thread's unrelated row.
type hazardRow[S any] struct {
	slots [hpPerThread]atomic.Pointer[S]
	_     [cacheLineSize - hpPerThread*8%cacheLineSize]byte
}

// hazardRegistry is the safe-memory-reclamation backbone every adapter
// embeds: a thread publishes any segment pointer it is about to
// dereference into a slot indexed by its tid, and Retire only frees a
// segment once no thread's row still references it.
//
// Unlike the manual-memory original, Retire never calls an explicit
// deallocator: once a retired segment is no longer referenced by any
// hazard slot, this registry simply drops its own last Go pointer to it
// and lets the garbage collector reclaim the memory. The scan-and-drop
// bookkeeping below exists to bound how long a retired segment can be
// kept artificially alive by a stale slot, not to free memory by hand.
type hazardRegistry[S any] struct {
	maxThreads int
	maxHPs     int
	table      [maxThreadsHP]hazardRow[S]
	retired    [maxThreadsHP][]*S
}

func newHazardRegistry[S any](maxHPs, maxThreads int) *hazardRegistry[S] {
	if maxThreads > maxThreadsHP {
		panic("mpmcq: maxThreads exceeds hazard pointer registry capacity")
	}
	if maxHPs > hpPerThread {
		panic("mpmcq: maxHPs exceeds hazard pointer registry capacity")
	}
	return &hazardRegistry[S]{maxThreads: maxThreads, maxHPs: maxHPs}
}

// Protect publishes atom's current value into the caller's slot index,
// retrying the load/store pair until the published value matches what
// was last observed (guards against the pointer changing between the
// load and the store landing).
func (h *hazardRegistry[S]) Protect(index int, atom *atomic.Pointer[S], tid int) *S {
	var last *S
	for {
		cur := atom.Load()
		if cur == last {
			return cur
		}
		h.table[tid].slots[index].Store(cur)
		last = cur
	}
}

// ProtectValue publishes a non-atomic pointer value directly, for the
// case where the caller already holds the value it wants to protect
// (e.g. a value just returned from a previous Protect call).
func (h *hazardRegistry[S]) ProtectValue(index int, ptr *S, tid int) *S {
	h.table[tid].slots[index].Store(ptr)
	return ptr
}

// Clear releases the caller's single hazard slot.
func (h *hazardRegistry[S]) Clear(index, tid int) {
	h.table[tid].slots[index].Store(nil)
}

// ClearAll releases every hazard slot the caller's tid owns.
func (h *hazardRegistry[S]) ClearAll(tid int) {
	for i := 0; i < h.maxHPs; i++ {
		h.table[tid].slots[i].Store(nil)
	}
}

// Retire appends ptr to the caller's retired list (unless nil) and scans
// the full table for entries nobody still references, dropping them from
// the list so the garbage collector can reclaim them. THRESHOLD_R is 0:
// every Retire call scans, trading a little extra work per retirement
// for bounded worst-case memory growth (see DESIGN.md's Open Question
// resolution).
func (h *hazardRegistry[S]) Retire(ptr *S, tid int) {
	if ptr != nil {
		h.retired[tid] = append(h.retired[tid], ptr)
	}
	list := h.retired[tid]
	for i := 0; i < len(list); {
		obj := list[i]
		if h.isReferenced(obj) {
			i++
			continue
		}
		list[i] = list[len(list)-1]
		list = list[:len(list)-1]
	}
	h.retired[tid] = list
}

func (h *hazardRegistry[S]) isReferenced(obj *S) bool {
	for tid := 0; tid < maxThreadsHP; tid++ {
		for i := hpPerThread - 1; i >= 0; i-- {
			if h.table[tid].slots[i].Load() == obj {
				return true
			}
		}
	}
	return false
}
