//
// circ_mux.go
//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuits

import (
	"github.com/markkurossi/mpcbench/circuit"
)

// NewMUX creates a multiplexer circuit that selects the input t or f
// to output, based on the value of the condition cond.
func NewMUX(cc *Compiler, cond circuit.Wire, t, f []circuit.Wire) []circuit.Wire {
	t, f = cc.ZeroPad(t, f)

	out := make([]circuit.Wire, len(t))
	for i := 0; i < len(t); i++ {
		// out[i] = XOR(AND(XOR(f[i], t[i]), cond), f[i])
		out[i] = cc.XOR(cc.AND(cc.XOR(f[i], t[i]), cond), f[i])
	}
	return out
}

// NewORReduce returns the OR of all wires. The gates form a balanced
// tree.
func NewORReduce(cc *Compiler, x []circuit.Wire) circuit.Wire {
	return reduce(x, cc.ZeroWire(), cc.OR)
}

// NewANDReduce returns the AND of all wires.
func NewANDReduce(cc *Compiler, x []circuit.Wire) circuit.Wire {
	return reduce(x, cc.OneWire(), cc.AND)
}

func reduce(x []circuit.Wire, empty circuit.Wire,
	op func(a, b circuit.Wire) circuit.Wire) circuit.Wire {

	switch len(x) {
	case 0:
		return empty
	case 1:
		return x[0]
	}
	mid := len(x) / 2
	return op(reduce(x[:mid], empty, op), reduce(x[mid:], empty, op))
}
