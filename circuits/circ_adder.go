//
// circ_adder.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuits

import (
	"github.com/markkurossi/mpcbench/circuit"
)

// NewHalfAdder returns the sum and carry of a+b.
func NewHalfAdder(cc *Compiler, a, b circuit.Wire) (s, c circuit.Wire) {
	return cc.XOR(a, b), cc.AND(a, b)
}

// NewFullAdder returns the sum and carry of a+b+cin.
func NewFullAdder(cc *Compiler, a, b, cin circuit.Wire) (s, cout circuit.Wire) {
	// s = a XOR b XOR cin
	// cout = cin XOR ((a XOR cin) AND (b XOR cin)).
	w1 := cc.XOR(b, cin)
	s = cc.XOR(a, w1)
	w2 := cc.XOR(a, cin)
	w3 := cc.AND(w1, w2)
	cout = cc.XOR(cin, w3)
	return
}

// NewAdder creates an adder circuit computing x+y+cin. The result has
// bits bits; the carry out of the highest bit is dropped.
func NewAdder(cc *Compiler, x, y []circuit.Wire, cin circuit.Wire,
	bits int) []circuit.Wire {

	x = cc.Extend(x, bits)
	y = cc.Extend(y, bits)

	z := make([]circuit.Wire, bits)
	c := cin
	for i := 0; i < bits; i++ {
		z[i], c = NewFullAdder(cc, x[i], y[i], c)
	}
	return z
}

// NewIncrementer creates a circuit computing x+inc. The result has
// len(x)+1 bits, the highest bit being the carry out.
func NewIncrementer(cc *Compiler, x []circuit.Wire,
	inc circuit.Wire) []circuit.Wire {

	z := make([]circuit.Wire, len(x)+1)
	c := inc
	for i := 0; i < len(x); i++ {
		z[i], c = NewHalfAdder(cc, x[i], c)
	}
	z[len(x)] = c
	return z
}
