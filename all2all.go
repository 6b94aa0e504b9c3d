// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// All2All is a producers x consumers matrix of independent SPSC lanes:
// lane[p][c] is the only channel producer p and consumer c ever share, so
// within a lane Lamport's single-writer-per-index SPSC applies unmodified,
// and the matrix as a whole behaves as an MPMC queue assembled from P*C
// contention-free SPSC pairs instead of one shared structure every
// producer and consumer fights over.
//
// Push(item, tid) maps tid to a producer row (tid%producers) and sweeps
// that row's lanes for one with room, starting from a hint column so
// repeated calls from the same producer spread load round-robin rather
// than hammering consumer 0's lane first every time. Pop is the mirror
// image over a consumer's column. The original suite's reference
// implementation kept this round-robin hint as a single process-global
// variable shared, and raced on, by every All2All instance and every
// thread; here it is an atomix.Uint64 field per instance instead, which
// removes the cross-instance interference without changing the
// algorithm's sweep order.
type All2All struct {
	producers int
	consumers int
	lanes     []*SPSC // row-major: lane index = p*consumers + c

	producerHint []atomix.Uint64 // one per producer row, next consumer column to try
	consumerHint []atomix.Uint64 // one per consumer column, next producer row to try
}

// NewAll2All builds a producers x consumers matrix of SPSC lanes, each of
// capacity laneCapacity.
func NewAll2All(producers, consumers, laneCapacity int) *All2All {
	if producers <= 0 || consumers <= 0 {
		panic("mpmcq: All2All requires producers > 0 and consumers > 0")
	}
	a := &All2All{
		producers:    producers,
		consumers:    consumers,
		lanes:        make([]*SPSC, producers*consumers),
		producerHint: make([]atomix.Uint64, producers),
		consumerHint: make([]atomix.Uint64, consumers),
	}
	for i := range a.lanes {
		a.lanes[i] = NewSPSC(laneCapacity)
	}
	return a
}

func (a *All2All) lane(p, c int) *SPSC {
	return a.lanes[p*a.consumers+c]
}

// Push implements Queue: tid selects the producer row via tid%producers.
// Every lane in that row is tried once, starting from the row's
// round-robin hint, before giving up with ErrWouldBlock.
func (a *All2All) Push(item unsafe.Pointer, tid int) error {
	if item == nil {
		panic("mpmcq: Push of nil item")
	}
	p := tid % a.producers
	start := int(a.producerHint[p].LoadRelaxed()) % a.consumers
	for i := 0; i < a.consumers; i++ {
		c := (start + i) % a.consumers
		if err := a.lane(p, c).Push(item, 0); err == nil {
			a.producerHint[p].StoreRelaxed(uint64(c + 1))
			return nil
		}
	}
	return ErrWouldBlock
}

// Pop implements Queue: tid selects the consumer column via
// tid%consumers. Every lane in that column is tried once, starting from
// the column's round-robin hint, before giving up with ErrWouldBlock.
func (a *All2All) Pop(tid int) (unsafe.Pointer, error) {
	c := tid % a.consumers
	start := int(a.consumerHint[c].LoadRelaxed()) % a.producers
	for i := 0; i < a.producers; i++ {
		p := (start + i) % a.producers
		if item, err := a.lane(p, c).Pop(0); err == nil {
			a.consumerHint[c].StoreRelaxed(uint64(p + 1))
			return item, nil
		}
	}
	return nil, ErrWouldBlock
}

// Length implements Queue: the sum of every lane's length. tid is
// accepted for interface conformance and ignored.
func (a *All2All) Length(_ int) int {
	total := 0
	for _, lane := range a.lanes {
		total += lane.Length(0)
	}
	return total
}

// Capacity implements Queue: the sum of every lane's capacity.
func (a *All2All) Capacity() int {
	total := 0
	for _, lane := range a.lanes {
		total += lane.Capacity()
	}
	return total
}

// ClassName implements Queue.
func (a *All2All) ClassName(padding bool) string {
	if padding {
		return "All2AllQueue/padded"
	}
	return "All2AllQueue"
}

// Producers returns the number of producer rows in the matrix.
func (a *All2All) Producers() int {
	return a.producers
}

// Consumers returns the number of consumer columns in the matrix.
func (a *All2All) Consumers() int {
	return a.consumers
}
