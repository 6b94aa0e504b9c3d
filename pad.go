// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

// cacheLineSize is the assumed cache line size used for padding. It is a
// conservative upper bound across amd64/arm64; correctness never depends
// on it matching the real line size, only throughput does.
const cacheLineSize = 64

// pad64 pads a struct out to a cache line when embedded as a trailing
// field. Used to keep the SPSC ring's hot indices and cached indices
// on their own cache line so independent producer and
// consumer cursors don't false-share.
type pad64 [cacheLineSize]byte

// pad56 is pad64 minus one uint64 (8 bytes), for structs whose preceding
// field is a single 8-byte word and that should round out to exactly one
// cache line rather than spilling into a second.
type pad56 [cacheLineSize - 8]byte
