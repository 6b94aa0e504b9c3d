// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq

// isPowTwo reports whether x is a power of two. 0 is not.
func isPowTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// nextPowTwo returns the smallest power of two >= x.
func nextPowTwo(x uint64) uint64 {
	if x == 0 {
		return 1
	}
	if isPowTwo(x) {
		return x
	}
	p := uint64(1)
	for p < x {
		p <<= 1
	}
	return p
}
