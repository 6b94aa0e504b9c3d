// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq_test

import (
	"testing"
	"unsafe"

	"github.com/ringforge/mpmcq"
)

func TestBoundedSegmentAdapterCapsLiveSegments(t *testing.T) {
	// Segment size 2, cap of 2 live segments: room for 4 items before
	// a third segment would be needed.
	q := mpmcq.NewBoundedSegmentCRQ(2, 1, 2)

	vals := []int{1, 2, 3, 4}
	for i := range vals {
		if err := q.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	extra := 5
	if err := q.Push(unsafe.Pointer(&extra), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push past segment budget: got %v, want ErrWouldBlock", err)
	}

	for i := range vals {
		got, err := q.Pop(0)
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if *(*int)(got) != vals[i] {
			t.Fatalf("Pop(%d): got %d, want %d", i, *(*int)(got), vals[i])
		}
	}
}

func TestBoundedSegmentAdapterSegmentCount(t *testing.T) {
	q := mpmcq.NewBoundedSegmentCRQ(2, 1, 4)
	if q.SegmentCount() != 0 {
		t.Fatalf("SegmentCount: got %d, want 0 before any growth", q.SegmentCount())
	}
	vals := []int{1, 2, 3}
	for i := range vals {
		if err := q.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if q.SegmentCount() != 1 {
		t.Fatalf("SegmentCount: got %d, want 1 after one growth", q.SegmentCount())
	}
}

func TestBoundedSegmentAdapterAllSegmentKinds(t *testing.T) {
	adapters := []mpmcq.Queue{
		mpmcq.NewBoundedSegmentCRQ(4, 1, 3),
		mpmcq.NewBoundedSegmentPRQ(4, 1, 3),
		mpmcq.NewBoundedSegmentMTQ(4, 1, 3),
		mpmcq.NewBoundedSegmentFAA(4, 1, 3),
	}
	for _, q := range adapters {
		v := 11
		if err := q.Push(unsafe.Pointer(&v), 0); err != nil {
			t.Fatalf("%s: Push: %v", q.ClassName(false), err)
		}
		got, err := q.Pop(0)
		if err != nil {
			t.Fatalf("%s: Pop: %v", q.ClassName(false), err)
		}
		if *(*int)(got) != 11 {
			t.Fatalf("%s: Pop: got %d, want 11", q.ClassName(false), *(*int)(got))
		}
	}
}
