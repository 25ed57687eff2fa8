//
// circ_float.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package circuits

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/circuit"
)

// IEEE-754 binary64 layout.
const (
	float64FracBits = 52
	float64ExpBits  = 11
	float64Bias     = 1023
	float64Bits     = 64

	// Exponent arithmetic is done in two's complement with room for
	// the sum of two biased exponents and its sign.
	expCalcBits = 13
)

// Float64QNaN is the canonical quiet NaN the multiplier produces.
const Float64QNaN uint64 = 0x7ff8000000000000

type float64Parts struct {
	sign  circuit.Wire
	exp   []circuit.Wire
	frac  []circuit.Wire
	zero  circuit.Wire
	inf   circuit.Wire
	nan   circuit.Wire
	value []circuit.Wire
}

func newFloat64Parts(cc *Compiler, x []circuit.Wire) *float64Parts {
	p := &float64Parts{
		sign: x[float64Bits-1],
		exp:  x[float64FracBits : float64Bits-1],
		frac: x[:float64FracBits],
	}
	expZero := cc.INV(NewORReduce(cc, p.exp))
	expMax := NewANDReduce(cc, p.exp)
	fracZero := cc.INV(NewORReduce(cc, p.frac))

	// Subnormal values are flushed to zero.
	p.zero = expZero
	p.inf = cc.AND(expMax, fracZero)
	p.nan = cc.AND(expMax, cc.INV(fracZero))

	// Significand with the hidden bit.
	p.value = append(append([]circuit.Wire(nil), p.frac...), cc.OneWire())

	return p
}

// NewFloat64Multiplier creates an IEEE-754 binary64 multiplier
// circuit computing x*y with round to nearest, ties to even. NaN
// operands and the products 0*Inf produce the canonical quiet NaN;
// subnormal operands and results are flushed to signed zero.
func NewFloat64Multiplier(cc *Compiler, x, y []circuit.Wire) (
	[]circuit.Wire, error) {

	if len(x) != float64Bits || len(y) != float64Bits {
		return nil, errors.Newf("float64 multiplier: invalid arguments: "+
			"x=%d, y=%d", len(x), len(y))
	}
	a := newFloat64Parts(cc, x)
	b := newFloat64Parts(cc, y)

	sign := cc.XOR(a.sign, b.sign)

	// Significand product in [2^104, 2^106).
	p := NewArrayMultiplier(cc, a.value, b.value, 2*(float64FracBits+1))
	hi := p[len(p)-1]

	// Normalize to 53 bits with guard and sticky bits.
	m := NewMUX(cc, hi, p[float64FracBits+1:], p[float64FracBits:len(p)-1])
	guard := NewMUX(cc, hi, p[float64FracBits:float64FracBits+1],
		p[float64FracBits-1:float64FracBits])[0]
	sticky := cc.OR(NewORReduce(cc, p[:float64FracBits-1]),
		cc.AND(hi, p[float64FracBits-1]))

	// Round to nearest, ties to even.
	roundUp := cc.AND(guard, cc.OR(sticky, m[0]))
	mr := NewIncrementer(cc, m, roundUp)
	roundCarry := mr[len(mr)-1]
	frac := mr[:float64FracBits]

	// E = ea + eb - bias + hi + roundCarry.
	e := NewAdder(cc, a.exp, b.exp, hi, expCalcBits)
	e = NewAdder(cc, e,
		cc.Const(expCalcBits, uint64(1<<expCalcBits-float64Bias)),
		roundCarry, expCalcBits)

	neg := e[expCalcBits-1]
	overflow := cc.AND(cc.INV(neg),
		cc.OR(e[float64ExpBits], NewANDReduce(cc, e[:float64ExpBits])))
	underflow := cc.OR(neg, cc.INV(NewORReduce(cc, e[:expCalcBits-1])))

	result := make([]circuit.Wire, 0, float64Bits)
	result = append(result, frac...)
	result = append(result, e[:float64ExpBits]...)
	result = append(result, sign)

	signedZero := cc.Const(float64Bits, 0)
	signedZero[float64Bits-1] = sign

	signedInf := cc.Const(float64Bits, 0x7ff0000000000000)
	signedInf[float64Bits-1] = sign

	zero := cc.OR(a.zero, b.zero)
	inf := cc.OR(a.inf, b.inf)
	nan := cc.OR(cc.OR(a.nan, b.nan),
		cc.OR(cc.AND(a.inf, b.zero), cc.AND(a.zero, b.inf)))

	// Lowest priority first.
	result = NewMUX(cc, underflow, signedZero, result)
	result = NewMUX(cc, overflow, signedInf, result)
	result = NewMUX(cc, zero, signedZero, result)
	result = NewMUX(cc, inf, signedInf, result)
	result = NewMUX(cc, nan, cc.Const(float64Bits, Float64QNaN), result)

	return result, nil
}
