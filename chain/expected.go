//
// expected.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package chain

import (
	"math"
)

// Expected computes the chain result in the clear. The bits and prec
// apply to the fixed point domains.
func Expected[T Number](domain Domain, a, b T, depth, bits, prec int) T {
	x := Encode(a)
	y := Encode(b)

	var r uint64
	switch domain {
	case FixedPoint:
		m := mask(bits)
		x &= m
		y &= m
		r = (x * y) & m
		for k := 1; k <= depth; k++ {
			r = (r * y) & m
		}

	case FloatEmulated:
		xf := math.Float64frombits(x)
		yf := math.Float64frombits(y)
		rf := MulFTZ(xf, yf)
		for k := 1; k <= depth; k++ {
			rf = MulFTZ(rf, yf)
		}
		r = math.Float64bits(rf)

	case ScaledFixedPoint:
		m := mask(bits)
		x &= m
		y &= m
		xs := (x << prec) & m
		ys := (y << prec) & m
		r = ((xs * ys) & m) >> prec
		for k := 1; k <= depth; k++ {
			r = ((r * ys) & m) >> prec
		}
		r >>= prec
	}
	return Decode[T](r)
}

// Width returns the output width of the chain in bits.
func Width(domain Domain, bits, prec int) int {
	switch domain {
	case FloatEmulated:
		return 64
	case ScaledFixedPoint:
		return bits - 2*prec
	default:
		return bits
	}
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

// minNormal is the smallest normal binary64 value.
const minNormal = 0x1p-1022

func flush(v float64) float64 {
	if v != 0 && math.Abs(v) < minNormal {
		return math.Copysign(0, v)
	}
	return v
}

// MulFTZ multiplies x and y the way the emulated float multiplier
// does: subnormal operands and results are flushed to signed zero.
func MulFTZ(x, y float64) float64 {
	return flush(flush(x) * flush(y))
}

// Equal tests if the decoded result equals the expected value. All
// NaNs are equal.
func Equal[T Number](got, expected T) bool {
	if g, ok := any(got).(float64); ok {
		e := any(expected).(float64)
		if math.IsNaN(g) && math.IsNaN(e) {
			return true
		}
	}
	return got == expected
}
