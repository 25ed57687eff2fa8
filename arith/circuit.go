//
// circuit.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package arith implements the arithmetic sharing backend. Values are
// additively shared modulo 2^k and multiplied with Beaver triples
// that are generated with Gilboa's OT based multiplication.
package arith

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/share"
)

var (
	_ share.Circuit  = &Circuit{}
	_ share.Executor = &Circuit{}
)

// Op defines circuit operations.
type Op int

// Circuit operations.
const (
	OpInput Op = iota
	OpConst
	OpMul
	OpOutput
)

var opNames = map[Op]string{
	OpInput:  "input",
	OpConst:  "const",
	OpMul:    "mul",
	OpOutput: "output",
}

func (op Op) String() string {
	name, ok := opNames[op]
	if ok {
		return name
	}
	return "{Op}"
}

type gate struct {
	op    Op
	bits  int
	a     share.WireID
	b     share.WireID
	out   share.WireID
	value uint64
	role  share.Role
	idx   int
}

type input struct {
	owner  share.Role
	values []uint64
}

type output struct {
	share *share.Share
	to    share.Role
	wire  share.WireID
}

// Circuit implements the arithmetic sharing circuit builder.
type Circuit struct {
	// Timing receives protocol phase samples if set.
	Timing *circuit.Timing

	config   *env.Config
	gates    []gate
	numWires int
	numMuls  int
	inputs   []input
	outputs  []output
	index    map[*share.Share]int
	lanes    int
	role     share.Role
	results  [][]uint64
}

// NewCircuit creates a new arithmetic sharing circuit.
func NewCircuit(config *env.Config) *Circuit {
	return &Circuit{
		config: config,
		index:  make(map[*share.Share]int),
		lanes:  1,
	}
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

func (c *Circuit) newShare(bits, lanes int) *share.Share {
	w := share.WireID(c.numWires)
	c.numWires++
	return &share.Share{
		Sharing:    share.Arithmetic,
		BitLength:  bits,
		ValueCount: lanes,
		Wires:      []share.WireID{w},
	}
}

func (c *Circuit) check(a *share.Share) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Sharing != share.Arithmetic || len(a.Wires) != 1 {
		return errors.Newf("arith: invalid share %s", a)
	}
	return nil
}

// Sharing implements share.Circuit.Sharing.
func (c *Circuit) Sharing() share.Sharing {
	return share.Arithmetic
}

// PutConstant implements share.Circuit.PutConstant.
func (c *Circuit) PutConstant(bits int, value uint64) *share.Share {
	s := c.newShare(bits, 1)
	c.gates = append(c.gates, gate{
		op:    OpConst,
		bits:  bits,
		out:   s.Wires[0],
		value: value & mask(bits),
	})
	return s
}

// PutInput implements share.Circuit.PutInput.
func (c *Circuit) PutInput(owner share.Role, values []uint64, bits int) (
	*share.Share, error) {

	if owner != share.Server && owner != share.Client {
		return nil, errors.Newf("arith: invalid input owner %s", owner)
	}
	if bits < 1 || bits > 64 {
		return nil, errors.Newf("arith: invalid input size %d", bits)
	}
	if len(values) == 0 {
		return nil, errors.Wrap(share.ErrLanes, "arith: input without values")
	}
	if len(values) > 1 && c.lanes > 1 && len(values) != c.lanes {
		return nil, errors.Wrapf(share.ErrLanes,
			"arith: input lanes %d != %d", len(values), c.lanes)
	}
	c.lanes = max(c.lanes, len(values))

	s := c.newShare(bits, len(values))
	c.gates = append(c.gates, gate{
		op:   OpInput,
		bits: bits,
		out:  s.Wires[0],
		role: owner,
		idx:  len(c.inputs),
	})
	c.inputs = append(c.inputs, input{
		owner:  owner,
		values: append([]uint64(nil), values...),
	})
	return s, nil
}

// PutMul implements share.Circuit.PutMul.
func (c *Circuit) PutMul(a, b *share.Share) (*share.Share, error) {
	if err := c.check(a); err != nil {
		return nil, err
	}
	if err := c.check(b); err != nil {
		return nil, err
	}
	lanes, err := share.Lanes(a, b)
	if err != nil {
		return nil, err
	}
	// Shares do not lift to a wider ring.
	if a.BitLength != b.BitLength {
		return nil, errors.Newf("arith: operand widths %d != %d",
			a.BitLength, b.BitLength)
	}
	bits := a.BitLength
	s := c.newShare(bits, lanes)
	c.gates = append(c.gates, gate{
		op:   OpMul,
		bits: bits,
		a:    a.Wires[0],
		b:    b.Wires[0],
		out:  s.Wires[0],
		idx:  c.numMuls,
	})
	c.numMuls++
	return s, nil
}

// PutOutput implements share.Circuit.PutOutput.
func (c *Circuit) PutOutput(s *share.Share, to share.Role) (
	*share.Share, error) {

	if err := c.check(s); err != nil {
		return nil, err
	}
	switch to {
	case share.Server, share.Client, share.All:
	default:
		return nil, errors.Newf("arith: invalid output role %s", to)
	}
	out := &share.Share{
		Sharing:    share.Arithmetic,
		BitLength:  s.BitLength,
		ValueCount: s.ValueCount,
		Wires:      []share.WireID{s.Wires[0]},
	}
	c.gates = append(c.gates, gate{
		op:   OpOutput,
		bits: s.BitLength,
		a:    s.Wires[0],
		role: to,
		idx:  len(c.outputs),
	})
	c.index[out] = len(c.outputs)
	c.outputs = append(c.outputs, output{
		share: out,
		to:    to,
		wire:  s.Wires[0],
	})
	return out, nil
}

// Decode implements share.Circuit.Decode.
func (c *Circuit) Decode(out *share.Share) (
	bits, nvals int, values []uint64, err error) {

	idx, ok := c.index[out]
	if !ok {
		return 0, 0, nil, errors.New("arith: share is not an output")
	}
	if c.results == nil {
		return 0, 0, nil, errors.New("arith: circuit not executed")
	}
	if !c.outputs[idx].to.Receives(c.role) {
		return 0, 0, nil, errors.Newf("arith: output revealed to %s, not %s",
			c.outputs[idx].to, c.role)
	}
	values = append([]uint64(nil), c.results[idx][:out.ValueCount]...)
	return out.BitLength, out.ValueCount, values, nil
}

// NumGates implements share.Executor.NumGates.
func (c *Circuit) NumGates() int {
	return len(c.gates)
}

// NumMuls returns the number of multiplication gates.
func (c *Circuit) NumMuls() int {
	return c.numMuls
}

// Lanes returns the number of SIMD lanes of the circuit.
func (c *Circuit) Lanes() int {
	return c.lanes
}

// Digest computes a digest of the circuit structure.
func (c *Circuit) Digest() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	put := func(v uint64) {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	put(uint64(c.numWires))
	put(uint64(c.lanes))
	for _, g := range c.gates {
		put(uint64(g.op))
		put(uint64(g.bits))
		put(uint64(g.a))
		put(uint64(g.b))
		put(uint64(g.out))
		put(uint64(g.role))
		if g.op == OpConst {
			put(g.value)
		}
	}
	return h.Sum64()
}

func (c *Circuit) inputValue(idx, lane int) uint64 {
	values := c.inputs[idx].values
	if len(values) == 1 {
		return values[0]
	}
	return values[lane]
}

func (c *Circuit) newResults() {
	c.results = make([][]uint64, len(c.outputs))
	for idx := range c.results {
		c.results[idx] = make([]uint64, c.lanes)
	}
}

func (c *Circuit) newWires() [][]uint64 {
	wires := make([][]uint64, c.numWires)
	for i := range wires {
		wires[i] = make([]uint64, c.lanes)
	}
	return wires
}

// Compute implements share.Executor.Compute.
func (c *Circuit) Compute() error {
	if len(c.outputs) == 0 {
		return errors.New("arith: circuit has no outputs")
	}
	c.role = share.All
	c.newResults()
	wires := c.newWires()

	for _, g := range c.gates {
		m := mask(g.bits)
		for lane := 0; lane < c.lanes; lane++ {
			switch g.op {
			case OpInput:
				wires[g.out][lane] = c.inputValue(g.idx, lane) & m
			case OpConst:
				wires[g.out][lane] = g.value
			case OpMul:
				wires[g.out][lane] = (wires[g.a][lane] * wires[g.b][lane]) & m
			case OpOutput:
				c.results[g.idx][lane] = wires[g.a][lane] & m
			}
		}
	}
	return nil
}
