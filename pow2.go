// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !nopow2

package mpmcq

// pow2Enabled selects the AND-masking index path over a modulo when true.
// Default build: ring sizes are rounded up to a power of two so index
// computation is a mask instead of a division.
const pow2Enabled = true

// ringSize rounds n up to the next power of two.
func ringSize(n uint64) uint64 {
	if isPowTwo(n) {
		return n
	}
	return nextPowTwo(n)
}
