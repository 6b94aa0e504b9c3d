// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build nohazard

package mpmcq

import "sync/atomic"

// maxThreadsHP and hpPerThread are kept identical to the hazard.go build
// so adapter code doesn't need a second set of constants.
const (
	maxThreadsHP = 256
	hpPerThread  = 11
)

// hazardRegistry is a correctness/benchmark-only stub: it publishes no
// protections and keeps no retired list, so a retired segment is left
// entirely to the garbage collector, which reclaims it once no goroutine
// still holds a pointer to it. It exists to measure the hazard-pointer
// bookkeeping's overhead in isolation, not for production use (per
// spec.md §6's explicit allowance for a disable switch).
type hazardRegistry[S any] struct {
	maxThreads int
	maxHPs     int
}

func newHazardRegistry[S any](maxHPs, maxThreads int) *hazardRegistry[S] {
	return &hazardRegistry[S]{maxThreads: maxThreads, maxHPs: maxHPs}
}

func (h *hazardRegistry[S]) Protect(_ int, atom *atomic.Pointer[S], _ int) *S {
	return atom.Load()
}

func (h *hazardRegistry[S]) ProtectValue(_ int, ptr *S, _ int) *S {
	return ptr
}

func (h *hazardRegistry[S]) Clear(_, _ int) {}

func (h *hazardRegistry[S]) ClearAll(_ int) {}

func (h *hazardRegistry[S]) Retire(_ *S, _ int) {}
