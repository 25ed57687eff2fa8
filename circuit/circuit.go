//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit implements compiled boolean circuits and their
// garbling.
package circuit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Operation specifies gate function.
type Operation byte

// Gate functions.
const (
	XOR Operation = iota
	XNOR
	AND
	OR
	INV
)

// Stats holds statistics about circuit operations.
type Stats [INV + 1]int

func (op Operation) String() string {
	switch op {
	case XOR:
		return "XOR"
	case XNOR:
		return "XNOR"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case INV:
		return "INV"
	default:
		return fmt.Sprintf("{Operation %d}", op)
	}
}

// Wire specifies a wire slot. Slots are reused once their values are
// no longer needed so the slot count stays well below the number of
// gates.
type Wire uint32

// Constant wires are pinned to the first two slots.
const (
	ZeroWire Wire = 0
	OneWire  Wire = 1
)

// ID returns the wire ID as integer.
func (w Wire) ID() int {
	return int(w)
}

func (w Wire) String() string {
	return fmt.Sprintf("w%d", w)
}

// Gate specifies a boolean gate.
type Gate struct {
	Input0 Wire
	Input1 Wire
	Output Wire
	Op     Operation
}

func (g Gate) String() string {
	return fmt.Sprintf("%v %v %v", g.Inputs(), g.Op, g.Output)
}

// Inputs returns gate input wires.
func (g Gate) Inputs() []Wire {
	switch g.Op {
	case XOR, XNOR, AND, OR:
		return []Wire{g.Input0, g.Input1}
	case INV:
		return []Wire{g.Input0}
	default:
		panic(fmt.Sprintf("unsupported gate type %s", g.Op))
	}
}

// Rows returns the number of garbled table rows the gate needs.
func (g Gate) Rows() int {
	switch g.Op {
	case AND, OR:
		return 4
	default:
		return 0
	}
}

// IOArg describes a circuit input or output argument. For inputs,
// Party is the owner of the value; for outputs, it is the party the
// value is revealed to.
type IOArg struct {
	Party int
	Wires []Wire
}

// Size returns the argument size in bits.
func (arg IOArg) Size() int {
	return len(arg.Wires)
}

// Circuit specifies a compiled boolean circuit.
type Circuit struct {
	NumWires int
	Inputs   []IOArg
	Outputs  []IOArg
	Gates    []Gate
	Stats    Stats
}

func (c *Circuit) String() string {
	var stats string

	for k := XOR; k <= INV; k++ {
		v := c.Stats[k]
		if len(stats) > 0 {
			stats += " "
		}
		stats += fmt.Sprintf("%s=%d", k, v)
	}
	return fmt.Sprintf("#gates=%d (%s) #w=%d", len(c.Gates), stats,
		c.NumWires)
}

// Cost computes the relative computational cost of the circuit.
func (c *Circuit) Cost() int {
	return (c.Stats[AND] + c.Stats[OR]) * 4
}

// Rows returns the number of garbled table rows of the circuit.
func (c *Circuit) Rows() int {
	return c.Cost()
}

// Dump prints a debug dump of the circuit.
func (c *Circuit) Dump() {
	fmt.Printf("circuit %s\n", c)
	for id, gate := range c.Gates {
		fmt.Printf("%04d\t%s\n", id, gate)
	}
}

// Digest computes a digest of the circuit structure. Peers compare
// digests before evaluation to detect that they built different
// circuits.
func (c *Circuit) Digest() uint64 {
	h := fnv.New64a()
	var buf [4]byte

	put := func(v int) {
		binary.BigEndian.PutUint32(buf[:], uint32(v))
		h.Write(buf[:])
	}
	put(c.NumWires)
	for _, ios := range [][]IOArg{c.Inputs, c.Outputs} {
		put(len(ios))
		for _, arg := range ios {
			put(arg.Party)
			put(len(arg.Wires))
			for _, w := range arg.Wires {
				put(int(w))
			}
		}
	}
	for _, g := range c.Gates {
		put(int(g.Op))
		put(int(g.Input0))
		put(int(g.Input1))
		put(int(g.Output))
	}
	return h.Sum64()
}
