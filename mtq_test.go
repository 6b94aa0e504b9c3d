// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq_test

import (
	"testing"
	"unsafe"

	"github.com/ringforge/mpmcq"
)

func TestMTQSegUnboundedCloses(t *testing.T) {
	q := mpmcq.NewMTQSeg(2, 1)
	a, b, c := 1, 2, 3
	if err := q.Push(unsafe.Pointer(&a), 0); err != nil {
		t.Fatalf("Push(a): %v", err)
	}
	if err := q.Push(unsafe.Pointer(&b), 0); err != nil {
		t.Fatalf("Push(b): %v", err)
	}
	if err := q.Push(unsafe.Pointer(&c), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push on full unbounded MTQSeg: got %v, want ErrWouldBlock", err)
	}

	for _, want := range []int{1, 2} {
		got, err := q.Pop(0)
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if *(*int)(got) != want {
			t.Fatalf("Pop: got %d, want %d", *(*int)(got), want)
		}
	}
}

func TestBoundedMTQSegNeverCloses(t *testing.T) {
	q := mpmcq.NewBoundedMTQSeg(2, 1)
	a, b := 1, 2
	if err := q.Push(unsafe.Pointer(&a), 0); err != nil {
		t.Fatalf("Push(a): %v", err)
	}
	if err := q.Push(unsafe.Pointer(&b), 0); err != nil {
		t.Fatalf("Push(b): %v", err)
	}
	c := 3
	if err := q.Push(unsafe.Pointer(&c), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}

	if _, err := q.Pop(0); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	// A bounded segment reopens for pushes the moment a slot is free,
	// unlike CRQSeg/PRQSeg/unbounded MTQSeg, which close permanently.
	if err := q.Push(unsafe.Pointer(&c), 0); err != nil {
		t.Fatalf("Push after drain on a bounded segment: %v", err)
	}
}
