//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"testing"
)

func TestLabel(t *testing.T) {
	label := &Label{
		D0: 0xffffffffffffffff,
		D1: 0xffffffffffffffff,
	}

	label.SetS(true)
	if label.D0 != 0xffffffffffffffff {
		t.Fatal("Failed to set S-bit")
	}

	label.SetS(false)
	if label.D0 != 0x7fffffffffffffff {
		t.Fatalf("Failed to clear S-bit: %x", label.D0)
	}
}

func TestLabelBits(t *testing.T) {
	var label Label

	for _, i := range []int{0, 1, 63, 64, 100, 127} {
		label.SetBit(i, 1)
		if label.Bit(i) != 1 {
			t.Fatalf("bit %d not set: %v", i, label)
		}
		label.SetBit(i, 0)
		if label.Bit(i) != 0 {
			t.Fatalf("bit %d not cleared: %v", i, label)
		}
	}
	if !label.Equal(Label{}) {
		t.Fatalf("label not zero: %v", label)
	}
}

func TestLabelData(t *testing.T) {
	label := Label{
		D0: 0x0102030405060708,
		D1: 0x1112131415161718,
	}
	var ld LabelData
	var copy Label
	copy.SetBytes(label.Bytes(&ld))
	if !copy.Equal(label) {
		t.Fatalf("SetBytes: got %v, expected %v", copy, label)
	}
	if NewValue(42).Value() != 42 {
		t.Fatalf("value label mismatch")
	}
}
