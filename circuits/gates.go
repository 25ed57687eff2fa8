//
// gates.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuits

import (
	"github.com/markkurossi/mpcbench/circuit"
)

// AddGate adds a gate into the circuit without folding and returns
// its output wire.
func (cc *Compiler) AddGate(op circuit.Operation, a, b circuit.Wire) circuit.Wire {
	o := cc.Wire()
	cc.gates = append(cc.gates, circuit.Gate{
		Input0: a,
		Input1: b,
		Output: o,
		Op:     op,
	})
	cc.stats[op]++
	return o
}

// XOR returns a XOR b.
func (cc *Compiler) XOR(a, b circuit.Wire) circuit.Wire {
	switch {
	case a == b:
		return circuit.ZeroWire
	case a == circuit.ZeroWire:
		return b
	case b == circuit.ZeroWire:
		return a
	case a == circuit.OneWire:
		return cc.INV(b)
	case b == circuit.OneWire:
		return cc.INV(a)
	}
	return cc.AddGate(circuit.XOR, a, b)
}

// XNOR returns NOT(a XOR b).
func (cc *Compiler) XNOR(a, b circuit.Wire) circuit.Wire {
	switch {
	case a == b:
		return circuit.OneWire
	case a == circuit.OneWire:
		return b
	case b == circuit.OneWire:
		return a
	case a == circuit.ZeroWire:
		return cc.INV(b)
	case b == circuit.ZeroWire:
		return cc.INV(a)
	}
	return cc.AddGate(circuit.XNOR, a, b)
}

// AND returns a AND b.
func (cc *Compiler) AND(a, b circuit.Wire) circuit.Wire {
	switch {
	case a == circuit.ZeroWire || b == circuit.ZeroWire:
		return circuit.ZeroWire
	case a == circuit.OneWire:
		return b
	case b == circuit.OneWire:
		return a
	case a == b:
		return a
	}
	return cc.AddGate(circuit.AND, a, b)
}

// OR returns a OR b.
func (cc *Compiler) OR(a, b circuit.Wire) circuit.Wire {
	switch {
	case a == circuit.OneWire || b == circuit.OneWire:
		return circuit.OneWire
	case a == circuit.ZeroWire:
		return b
	case b == circuit.ZeroWire:
		return a
	case a == b:
		return a
	}
	return cc.AddGate(circuit.OR, a, b)
}

// INV returns NOT a.
func (cc *Compiler) INV(a circuit.Wire) circuit.Wire {
	switch a {
	case circuit.ZeroWire:
		return circuit.OneWire
	case circuit.OneWire:
		return circuit.ZeroWire
	}
	return cc.AddGate(circuit.INV, a, 0)
}
