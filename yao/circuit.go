//
// circuit.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package yao implements the boolean sharing backend with Yao's
// garbled circuits. The SERVER garbles and the CLIENT evaluates.
package yao

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/circuits"
	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/share"
)

var (
	_ share.FloatCircuit = &Circuit{}
	_ share.Executor     = &Circuit{}
)

type input struct {
	owner  share.Role
	values []uint64
}

type output struct {
	share *share.Share
	to    share.Role
}

// Circuit implements the boolean sharing circuit builder.
type Circuit struct {
	// Timing receives protocol phase samples if set.
	Timing *circuit.Timing

	config  *env.Config
	cc      *circuits.Compiler
	inputs  []input
	outputs []output
	index   map[*share.Share]int
	lanes   int
	circ    *circuit.Circuit
	role    share.Role
	results [][]uint64
}

// NewCircuit creates a new boolean sharing circuit.
func NewCircuit(config *env.Config) *Circuit {
	return &Circuit{
		config: config,
		cc:     circuits.NewCompiler(),
		index:  make(map[*share.Share]int),
		lanes:  1,
	}
}

func wires(s *share.Share) []circuit.Wire {
	result := make([]circuit.Wire, len(s.Wires))
	for i, w := range s.Wires {
		result[i] = circuit.Wire(w)
	}
	return result
}

func (c *Circuit) newShare(w []circuit.Wire, lanes int) *share.Share {
	ids := make([]share.WireID, len(w))
	for i, wire := range w {
		ids[i] = share.WireID(wire)
	}
	return &share.Share{
		Sharing:    share.Boolean,
		BitLength:  len(ids),
		ValueCount: lanes,
		Wires:      ids,
	}
}

func (c *Circuit) check(a *share.Share) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Sharing != share.Boolean {
		return errors.Newf("yao: invalid sharing %s", a.Sharing)
	}
	return nil
}

func (c *Circuit) binary(a, b *share.Share) (int, error) {
	if err := c.check(a); err != nil {
		return 0, err
	}
	if err := c.check(b); err != nil {
		return 0, err
	}
	return share.Lanes(a, b)
}

// Sharing implements share.Circuit.Sharing.
func (c *Circuit) Sharing() share.Sharing {
	return share.Boolean
}

// PutConstant implements share.Circuit.PutConstant.
func (c *Circuit) PutConstant(bits int, value uint64) *share.Share {
	return c.newShare(c.cc.Const(bits, value), 1)
}

// PutInput implements share.Circuit.PutInput.
func (c *Circuit) PutInput(owner share.Role, values []uint64, bits int) (
	*share.Share, error) {

	if owner != share.Server && owner != share.Client {
		return nil, errors.Newf("yao: invalid input owner %s", owner)
	}
	if bits < 1 || bits > 64 {
		return nil, errors.Newf("yao: invalid input size %d", bits)
	}
	if len(values) == 0 {
		return nil, errors.Wrap(share.ErrLanes, "yao: input without values")
	}
	if len(values) > 1 && c.lanes > 1 && len(values) != c.lanes {
		return nil, errors.Wrapf(share.ErrLanes, "yao: input lanes %d != %d",
			len(values), c.lanes)
	}
	c.lanes = max(c.lanes, len(values))
	c.circ = nil

	c.inputs = append(c.inputs, input{
		owner:  owner,
		values: append([]uint64(nil), values...),
	})
	return c.newShare(c.cc.Input(int(owner), bits), len(values)), nil
}

// PutMul implements share.Circuit.PutMul.
func (c *Circuit) PutMul(a, b *share.Share) (*share.Share, error) {
	lanes, err := c.binary(a, b)
	if err != nil {
		return nil, err
	}
	width := max(a.BitLength, b.BitLength)
	c.circ = nil
	return c.newShare(circuits.NewMultiplier(c.cc, wires(a), wires(b), width),
		lanes), nil
}

// PutFPMul implements share.FloatCircuit.PutFPMul.
func (c *Circuit) PutFPMul(a, b *share.Share) (*share.Share, error) {
	lanes, err := c.binary(a, b)
	if err != nil {
		return nil, err
	}
	c.circ = nil
	result, err := circuits.NewFloat64Multiplier(c.cc, wires(a), wires(b))
	if err != nil {
		return nil, err
	}
	return c.newShare(result, lanes), nil
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
		return nil, errors.Newf("yao: invalid output role %s", to)
	}
	c.circ = nil
	c.cc.Output(int(to), wires(s))

	out := c.newShare(wires(s), s.ValueCount)
	c.index[out] = len(c.outputs)
	c.outputs = append(c.outputs, output{
		share: out,
		to:    to,
	})
	return out, nil
}

// Decode implements share.Circuit.Decode.
func (c *Circuit) Decode(out *share.Share) (
	bits, nvals int, values []uint64, err error) {

	idx, ok := c.index[out]
	if !ok {
		return 0, 0, nil, errors.New("yao: share is not an output")
	}
	if c.results == nil {
		return 0, 0, nil, errors.New("yao: circuit not executed")
	}
	if !c.outputs[idx].to.Receives(c.role) {
		return 0, 0, nil, errors.Newf("yao: output revealed to %s, not %s",
			c.outputs[idx].to, c.role)
	}
	values = append([]uint64(nil), c.results[idx][:out.ValueCount]...)
	return out.BitLength, out.ValueCount, values, nil
}

// NumGates implements share.Executor.NumGates.
func (c *Circuit) NumGates() int {
	return c.cc.NumGates()
}

// Lanes returns the number of SIMD lanes of the circuit.
func (c *Circuit) Lanes() int {
	return c.lanes
}

// Compile compiles the circuit.
func (c *Circuit) Compile() (*circuit.Circuit, error) {
	if c.circ == nil {
		circ, err := c.cc.Compile()
		if err != nil {
			return nil, errors.Wrap(err, "yao: compile")
		}
		c.circ = circ
	}
	return c.circ, nil
}

func (c *Circuit) inputValue(idx, lane int) uint64 {
	values := c.inputs[idx].values
	if len(values) == 1 {
		return values[0]
	}
	return values[lane]
}

func (c *Circuit) inputBit(idx, lane, bit int) bool {
	return (c.inputValue(idx, lane)>>bit)&1 == 1
}

func (c *Circuit) newResults() {
	c.results = make([][]uint64, len(c.outputs))
	for idx := range c.results {
		c.results[idx] = make([]uint64, c.lanes)
	}
}

// Compute implements share.Executor.Compute.
func (c *Circuit) Compute() error {
	circ, err := c.Compile()
	if err != nil {
		return err
	}
	c.role = share.All
	c.newResults()

	inputs := make([]uint64, len(c.inputs))
	for lane := 0; lane < c.lanes; lane++ {
		for idx := range inputs {
			inputs[idx] = c.inputValue(idx, lane)
		}
		result, err := circ.Compute(inputs)
		if err != nil {
			return err
		}
		for idx, r := range result {
			c.results[idx][lane] = r
		}
	}
	return nil
}
