//
// circ_multiplier.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuits

import (
	"github.com/markkurossi/mpcbench/circuit"
)

// NewArrayMultiplier creates a multiplier circuit implementing
// x*y=z. The product is truncated to bits bits so the rows never
// compute partial products above the result width.
func NewArrayMultiplier(cc *Compiler, x, y []circuit.Wire,
	bits int) []circuit.Wire {

	z := cc.Const(bits, 0)

	for j := 0; j < len(y) && j < bits; j++ {
		c := cc.ZeroWire()
		for k := j; k < bits; k++ {
			i := k - j
			b := cc.ZeroWire()
			if i < len(x) {
				b = cc.AND(x[i], y[j])
			} else if c == cc.ZeroWire() {
				break
			}
			z[k], c = NewFullAdder(cc, z[k], b, c)
		}
	}
	return z
}

// NewMultiplier creates a multiplier circuit computing x*y mod
// 2^bits.
func NewMultiplier(cc *Compiler, x, y []circuit.Wire,
	bits int) []circuit.Wire {

	// The operand with fewer wires drives the rows.
	if len(y) > len(x) {
		x, y = y, x
	}
	return NewArrayMultiplier(cc, x, y, bits)
}
