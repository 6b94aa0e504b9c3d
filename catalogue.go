// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

import "fmt"

// catalogueEntry builds a Queue from a segment size and a thread count,
// the two parameters every constructor in this package needs.
type catalogueEntry func(segmentSize int, maxThreads int) Queue

// catalogue maps the stable class-name strings a benchmark harness
// selects by (spec.md §6's class_name/enumeration requirement) to a
// constructor closure, generalizing the teacher's Builder/Build[T]
// dispatch-by-type-parameter into dispatch-by-name.
var catalogue = map[string]catalogueEntry{
	"crq-single":  func(n, t int) Queue { return NewCRQSeg(n, t) },
	"prq-single":  func(n, t int) Queue { return NewPRQSeg(n, t) },
	"mtq-single":  func(n, t int) Queue { return NewBoundedMTQSeg(n, t) },
	"faa-single":  func(n, t int) Queue { return NewFAASeg(n, t) },

	"crq-linked": func(n, t int) Queue { return NewLinkedCRQ(n, t) },
	"prq-linked": func(n, t int) Queue { return NewLinkedPRQ(n, t) },
	"mtq-linked": func(n, t int) Queue { return NewLinkedMTQ(n, t) },
	"faa-linked": func(n, t int) Queue { return NewLinkedFAA(n, t) },

	"crq-bounded-item": func(n, t int) Queue { return NewBoundedItemCRQ(n, t) },
	"prq-bounded-item": func(n, t int) Queue { return NewBoundedItemPRQ(n, t) },
	"mtq-bounded-item": func(n, t int) Queue { return NewBoundedItemMTQ(n, t) },
	"faa-bounded-item": func(n, t int) Queue { return NewBoundedItemFAA(n, t) },

	"mutex": func(n, _ int) Queue { return NewMutexQueue(n) },
	"spsc":  func(n, _ int) Queue { return NewSPSC(n) },
}

// segmentBoundedCatalogueEntry is the shape of the bounded-segment
// family's constructors, which additionally take a segment-count budget
// catalogue's uniform (segmentSize, maxThreads) shape has no slot for.
type segmentBoundedCatalogueEntry func(segmentSize int, maxThreads int, maxSegments int) Queue

var segmentBoundedCatalogue = map[string]segmentBoundedCatalogueEntry{
	"crq-bounded-segment": func(n, t, s int) Queue { return NewBoundedSegmentCRQ(n, t, s) },
	"prq-bounded-segment": func(n, t, s int) Queue { return NewBoundedSegmentPRQ(n, t, s) },
	"mtq-bounded-segment": func(n, t, s int) Queue { return NewBoundedSegmentMTQ(n, t, s) },
	"faa-bounded-segment": func(n, t, s int) Queue { return NewBoundedSegmentFAA(n, t, s) },
}

// all2allCatalogueEntry is the shape of the All2All family's
// constructor, which takes a producer count, a consumer count and a
// per-lane capacity instead of catalogue's uniform (segmentSize,
// maxThreads) shape.
type all2allCatalogueEntry func(producers int, consumers int, laneCapacity int) Queue

var all2allCatalogue = map[string]all2allCatalogueEntry{
	"all2all": func(p, c, l int) Queue { return NewAll2All(p, c, l) },
}

// NewAll2AllByName builds a Queue from the All2All family by its
// catalogue class name, e.g. "all2all".
func NewAll2AllByName(name string, producers int, consumers int, laneCapacity int) (Queue, error) {
	ctor, ok := all2allCatalogue[name]
	if !ok {
		return nil, fmt.Errorf("mpmcq: unknown all2all queue class %q", name)
	}
	return ctor(producers, consumers, laneCapacity), nil
}

// NewByName builds a Queue from its catalogue class name, a per-segment
// size (or overall capacity, for "mutex" and "spsc") and a maximum
// thread id. It returns an error rather than panicking on an unknown
// name, since the name is expected to come from external benchmark
// configuration rather than a compile-time constant.
func NewByName(name string, segmentSize int, maxThreads int) (Queue, error) {
	ctor, ok := catalogue[name]
	if !ok {
		if _, ok := segmentBoundedCatalogue[name]; ok {
			return nil, fmt.Errorf("mpmcq: %q requires a segment budget, use NewBoundedSegmentByName", name)
		}
		if _, ok := all2allCatalogue[name]; ok {
			return nil, fmt.Errorf("mpmcq: %q requires a producer/consumer shape, use NewAll2AllByName", name)
		}
		return nil, fmt.Errorf("mpmcq: unknown queue class %q", name)
	}
	return ctor(segmentSize, maxThreads), nil
}

// NewBoundedSegmentByName builds a Queue from the bounded-segment family
// by its catalogue class name, e.g. "crq-bounded-segment".
func NewBoundedSegmentByName(name string, segmentSize int, maxThreads int, maxSegments int) (Queue, error) {
	ctor, ok := segmentBoundedCatalogue[name]
	if !ok {
		return nil, fmt.Errorf("mpmcq: unknown bounded-segment queue class %q", name)
	}
	return ctor(segmentSize, maxThreads, maxSegments), nil
}

// ClassNames returns every registered catalogue class name, for a
// benchmark harness that wants to enumerate the full queue family
// without hardcoding the list.
func ClassNames() []string {
	names := make([]string, 0, len(catalogue)+len(segmentBoundedCatalogue)+len(all2allCatalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	for name := range segmentBoundedCatalogue {
		names = append(names, name)
	}
	for name := range all2allCatalogue {
		names = append(names, name)
	}
	return names
}
