// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build nopow2

package mpmcq

// pow2Enabled mirrors pow2.go's constant for the modulo-indexed build.
const pow2Enabled = false

// ringSize leaves n untouched: index computation uses modulo instead of
// a mask, so rings of any size are valid.
func ringSize(n uint64) uint64 {
	return n
}
