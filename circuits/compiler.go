//
// compiler.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package circuits implements a gate-level boolean circuit compiler
// and the arithmetic circuits built with it.
package circuits

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/circuit"
)

// Compiler builds boolean circuits gate by gate. Wires are virtual
// until Compile assigns them to wire slots. Gates with constant
// inputs are folded while the circuit is built so they never reach
// the gate list.
type Compiler struct {
	gates    []circuit.Gate
	numWires uint32
	inputs   []circuit.IOArg
	outputs  []circuit.IOArg
	stats    circuit.Stats
}

// NewCompiler creates a new circuit compiler.
func NewCompiler() *Compiler {
	return &Compiler{
		gates:    make([]circuit.Gate, 0, 65536),
		numWires: 2,
	}
}

// ZeroWire returns a wire holding value 0.
func (cc *Compiler) ZeroWire() circuit.Wire {
	return circuit.ZeroWire
}

// OneWire returns a wire holding value 1.
func (cc *Compiler) OneWire() circuit.Wire {
	return circuit.OneWire
}

// NumGates returns the number of gates added so far.
func (cc *Compiler) NumGates() int {
	return len(cc.gates)
}

// Stats returns the gate statistics of the added gates.
func (cc *Compiler) Stats() circuit.Stats {
	return cc.stats
}

// Wire allocates a new virtual wire.
func (cc *Compiler) Wire() circuit.Wire {
	w := circuit.Wire(cc.numWires)
	cc.numWires++
	return w
}

// Wires allocates bits new virtual wires.
func (cc *Compiler) Wires(bits int) []circuit.Wire {
	result := make([]circuit.Wire, bits)
	for i := range result {
		result[i] = cc.Wire()
	}
	return result
}

// Const returns the constant wires for the bits lowest bits of value.
func (cc *Compiler) Const(bits int, value uint64) []circuit.Wire {
	result := make([]circuit.Wire, bits)
	for i := range result {
		if i < 64 && value&(1<<i) != 0 {
			result[i] = circuit.OneWire
		} else {
			result[i] = circuit.ZeroWire
		}
	}
	return result
}

// Input adds a new input argument of the party and returns its wires.
func (cc *Compiler) Input(party, bits int) []circuit.Wire {
	wires := cc.Wires(bits)
	cc.inputs = append(cc.inputs, circuit.IOArg{
		Party: party,
		Wires: wires,
	})
	return wires
}

// Output adds the wires as an output argument revealed to the party.
func (cc *Compiler) Output(party int, wires []circuit.Wire) {
	cc.outputs = append(cc.outputs, circuit.IOArg{
		Party: party,
		Wires: append([]circuit.Wire(nil), wires...),
	})
}

// ZeroPad pads the argument wires x and y with zero values so that
// the resulting wires have the same number of bits.
func (cc *Compiler) ZeroPad(x, y []circuit.Wire) (
	[]circuit.Wire, []circuit.Wire) {

	if len(x) == len(y) {
		return x, y
	}
	return cc.Extend(x, max(len(x), len(y))),
		cc.Extend(y, max(len(x), len(y)))
}

// Extend zero-extends or truncates the wires to bits.
func (cc *Compiler) Extend(x []circuit.Wire, bits int) []circuit.Wire {
	result := make([]circuit.Wire, bits)
	for i := range result {
		if i < len(x) {
			result[i] = x[i]
		} else {
			result[i] = circuit.ZeroWire
		}
	}
	return result
}

// Compile compiles the circuit. Gates that do not contribute to any
// output are pruned and the virtual wires are mapped to wire slots
// so that a slot is reused after the last gate reading it. The slots
// 0 and 1 hold the constant values.
func (cc *Compiler) Compile() (*circuit.Circuit, error) {
	if len(cc.outputs) == 0 {
		return nil, errors.New("circuit has no outputs")
	}

	// Mark live wires backwards from the outputs.
	live := make([]bool, cc.numWires)
	for _, arg := range cc.outputs {
		for _, w := range arg.Wires {
			live[w] = true
		}
	}
	keep := make([]bool, len(cc.gates))
	for i := len(cc.gates) - 1; i >= 0; i-- {
		g := &cc.gates[i]
		if !live[g.Output] {
			continue
		}
		keep[i] = true
		live[g.Input0] = true
		if g.Op != circuit.INV {
			live[g.Input1] = true
		}
	}

	// Index of the last gate reading each wire. Output wires are never
	// released.
	const forever = -1
	lastUse := make([]int32, cc.numWires)
	for i := range cc.gates {
		if !keep[i] {
			continue
		}
		g := &cc.gates[i]
		lastUse[g.Input0] = int32(i) + 1
		if g.Op != circuit.INV {
			lastUse[g.Input1] = int32(i) + 1
		}
	}
	for _, arg := range cc.outputs {
		for _, w := range arg.Wires {
			lastUse[w] = forever
		}
	}

	alloc := newSlotAllocator(cc.numWires)

	inputs := make([]circuit.IOArg, len(cc.inputs))
	for idx, arg := range cc.inputs {
		inputs[idx] = circuit.IOArg{
			Party: arg.Party,
			Wires: make([]circuit.Wire, len(arg.Wires)),
		}
		for bit, w := range arg.Wires {
			inputs[idx].Wires[bit] = alloc.assign(w)
		}
	}

	result := &circuit.Circuit{
		Inputs: inputs,
	}
	for i := range cc.gates {
		if !keep[i] {
			continue
		}
		g := cc.gates[i]
		compiled := circuit.Gate{
			Op:     g.Op,
			Input0: alloc.slot(g.Input0),
		}
		if g.Op != circuit.INV {
			compiled.Input1 = alloc.slot(g.Input1)
		}
		if lastUse[g.Input0] == int32(i)+1 {
			alloc.release(g.Input0)
		}
		if g.Op != circuit.INV && g.Input1 != g.Input0 &&
			lastUse[g.Input1] == int32(i)+1 {
			alloc.release(g.Input1)
		}
		compiled.Output = alloc.assign(g.Output)

		result.Gates = append(result.Gates, compiled)
		result.Stats[g.Op]++
	}

	result.Outputs = make([]circuit.IOArg, len(cc.outputs))
	for idx, arg := range cc.outputs {
		result.Outputs[idx] = circuit.IOArg{
			Party: arg.Party,
			Wires: make([]circuit.Wire, len(arg.Wires)),
		}
		for bit, w := range arg.Wires {
			s, ok := alloc.lookup(w)
			if !ok {
				return nil, errors.Newf("output %d bit %d: wire %v not set",
					idx, bit, w)
			}
			result.Outputs[idx].Wires[bit] = s
		}
	}
	result.NumWires = alloc.numSlots()

	return result, nil
}

const unassigned = ^circuit.Wire(0)

// slotAllocator maps virtual wires to reusable wire slots.
type slotAllocator struct {
	slots []circuit.Wire
	free  []circuit.Wire
	next  circuit.Wire
}

func newSlotAllocator(numWires uint32) *slotAllocator {
	alloc := &slotAllocator{
		slots: make([]circuit.Wire, numWires),
		next:  2,
	}
	for i := range alloc.slots {
		alloc.slots[i] = unassigned
	}
	alloc.slots[circuit.ZeroWire] = circuit.ZeroWire
	alloc.slots[circuit.OneWire] = circuit.OneWire
	return alloc
}

func (alloc *slotAllocator) assign(w circuit.Wire) circuit.Wire {
	var s circuit.Wire
	if n := len(alloc.free); n > 0 {
		s = alloc.free[n-1]
		alloc.free = alloc.free[:n-1]
	} else {
		s = alloc.next
		alloc.next++
	}
	alloc.slots[w] = s
	return s
}

func (alloc *slotAllocator) slot(w circuit.Wire) circuit.Wire {
	return alloc.slots[w]
}

func (alloc *slotAllocator) lookup(w circuit.Wire) (circuit.Wire, bool) {
	s := alloc.slots[w]
	return s, s != unassigned
}

func (alloc *slotAllocator) release(w circuit.Wire) {
	if w == circuit.ZeroWire || w == circuit.OneWire {
		return
	}
	alloc.free = append(alloc.free, alloc.slots[w])
}

func (alloc *slotAllocator) numSlots() int {
	return int(alloc.next)
}
