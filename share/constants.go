//
// constants.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package share

// Const1 returns a 1-bit constant of v.
func Const1(c Circuit, v uint64) *Share {
	return c.PutConstant(1, v&1)
}

// Const32 returns a 32-bit constant of v.
func Const32(c Circuit, v uint64) *Share {
	return c.PutConstant(32, v&0xffffffff)
}

// Const64 returns a 64-bit constant of v.
func Const64(c Circuit, v uint64) *Share {
	return c.PutConstant(64, v)
}
