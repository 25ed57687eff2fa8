//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/cockroachdb/errors"
)

// Compute evaluates the circuit in the clear. The inputs contain one
// value for each input argument and the result one value for each
// output argument.
func (c *Circuit) Compute(inputs []uint64) ([]uint64, error) {
	if len(inputs) != len(c.Inputs) {
		return nil, errors.Newf("invalid inputs: got %d, expected %d",
			len(inputs), len(c.Inputs))
	}
	wires := make([]byte, c.NumWires)
	wires[OneWire] = 1

	for idx, arg := range c.Inputs {
		for bit, w := range arg.Wires {
			wires[w] = byte((inputs[idx] >> bit) & 1)
		}
	}

	for _, gate := range c.Gates {
		var result byte

		switch gate.Op {
		case XOR:
			result = wires[gate.Input0] ^ wires[gate.Input1]

		case XNOR:
			result = wires[gate.Input0] ^ wires[gate.Input1] ^ 1

		case AND:
			result = wires[gate.Input0] & wires[gate.Input1]

		case OR:
			result = wires[gate.Input0] | wires[gate.Input1]

		case INV:
			result = wires[gate.Input0] ^ 1

		default:
			return nil, errors.Newf("invalid gate %s", gate.Op)
		}

		wires[gate.Output] = result
	}

	result := make([]uint64, len(c.Outputs))
	for idx, arg := range c.Outputs {
		var r uint64
		for bit, w := range arg.Wires {
			if wires[w] != 0 {
				r |= 1 << bit
			}
		}
		result[idx] = r
	}
	return result, nil
}
