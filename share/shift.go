//
// shift.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"github.com/cockroachdb/errors"
)

func checkShift(v *Share, n int) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if len(v.Wires) == 1 {
		return errors.Wrapf(ErrUnpadded, "shift of %s", v)
	}
	if n < 0 {
		return errors.Newf("negative shift %d", n)
	}
	return nil
}

// LeftShift shifts v left by n bits. The result has the width of v;
// the n lowest positions hold the wires of the zero constant and the
// bits shifted past the width are dropped. The moved bits reuse the
// input wires so no gates are added for them.
func LeftShift(c Circuit, v *Share, n int) (*Share, error) {
	if err := checkShift(v, n); err != nil {
		return nil, err
	}
	width := len(v.Wires)
	zero := c.PutConstant(width, 0)

	wires := make([]WireID, width)
	copy(wires, zero.Wires)
	for i := 0; i+n < width; i++ {
		wires[i+n] = v.Wires[i]
	}
	return &Share{
		Sharing:    v.Sharing,
		BitLength:  width,
		ValueCount: v.ValueCount,
		Wires:      wires,
	}, nil
}

// LogicalRightShift shifts v right by n bits by dropping the n lowest
// wires. Unlike LeftShift, the result is n bits narrower than v. A
// shift by the full width returns a zero-width share that Validate
// rejects.
func LogicalRightShift(c Circuit, v *Share, n int) (*Share, error) {
	if err := checkShift(v, n); err != nil {
		return nil, err
	}
	var wires []WireID
	if n < len(v.Wires) {
		wires = append(wires, v.Wires[n:]...)
	}
	return &Share{
		Sharing:    v.Sharing,
		BitLength:  len(wires),
		ValueCount: v.ValueCount,
		Wires:      wires,
	}, nil
}
