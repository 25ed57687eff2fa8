//
// garble.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/ot"
)

func idx(l0, l1 ot.Label) int {
	var ret int
	if l0.S() {
		ret |= 0x2
	}
	if l1.S() {
		ret |= 0x1
	}
	return ret
}

func makeK(a, b ot.Label, t uint64) ot.Label {
	a.Mul2()
	b.Mul4()
	a.Xor(b)
	a.Xor(ot.NewTweak(t))
	return a
}

func encrypt(alg cipher.Block, a, b, c ot.Label, t uint64,
	data *ot.LabelData) ot.Label {

	k := makeK(a, b, t)

	k.GetData(data)
	alg.Encrypt(data[:], data[:])

	var pi ot.Label
	pi.SetData(data)
	pi.Xor(k)
	pi.Xor(c)

	return pi
}

func decrypt(alg cipher.Block, a, b ot.Label, t uint64, encrypted ot.Label,
	data *ot.LabelData) ot.Label {

	k := makeK(a, b, t)

	k.GetData(data)
	alg.Encrypt(data[:], data[:])

	var crypted ot.Label
	crypted.SetData(data)
	encrypted.Xor(crypted)
	encrypted.Xor(k)

	return encrypted
}

// NewCipher creates the garbling cipher from the key.
func NewCipher(key []byte) (cipher.Block, error) {
	return aes.NewCipher(key)
}

// NewDelta creates a free-XOR delta. The delta's S bit is set so the
// labels of every wire have opposite S bits.
func NewDelta(rand io.Reader) (ot.Label, error) {
	r, err := ot.NewLabel(rand)
	if err != nil {
		return r, err
	}
	r.SetS(true)
	return r, nil
}

// Garbler garbles the circuit for one evaluation lane. It holds the
// zero label of each wire slot; the one label is L0 ⊕ R.
type Garbler struct {
	alg   cipher.Block
	r     ot.Label
	prg   cipher.Stream
	wires []ot.Label
	data  ot.LabelData
}

// NewGarbler creates a lane garbler. The seed keys the PRG that
// creates the output labels of non-free gates.
func NewGarbler(alg cipher.Block, r ot.Label, seed ot.Label,
	numWires int) (*Garbler, error) {

	var ld ot.LabelData
	block, err := aes.NewCipher(seed.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	return &Garbler{
		alg:   alg,
		r:     r,
		prg:   cipher.NewCTR(block, iv[:]),
		wires: make([]ot.Label, numWires),
	}, nil
}

// NewLabel creates a new zero label from the lane PRG.
func (g *Garbler) NewLabel() ot.Label {
	clear(g.data[:])
	g.prg.XORKeyStream(g.data[:], g.data[:])
	var l ot.Label
	l.SetData(&g.data)
	return l
}

// SetWire sets the zero label of the wire slot.
func (g *Garbler) SetWire(w Wire, l0 ot.Label) {
	g.wires[w] = l0
}

// Wire returns the labels of the wire slot.
func (g *Garbler) Wire(w Wire) ot.Wire {
	l0 := g.wires[w]
	l1 := l0
	l1.Xor(g.r)
	return ot.Wire{
		L0: l0,
		L1: l1,
	}
}

// Garble garbles the gate id. The garbled rows are stored into table
// which must have room for gate.Rows() labels. The function returns
// the number of rows stored.
func (g *Garbler) Garble(gate *Gate, id uint64, table []ot.Label) (
	int, error) {

	a := g.Wire(gate.Input0)

	switch gate.Op {
	case XOR:
		l0 := a.L0
		l0.Xor(g.wires[gate.Input1])
		g.wires[gate.Output] = l0
		return 0, nil

	case XNOR:
		l0 := a.L1
		l0.Xor(g.wires[gate.Input1])
		g.wires[gate.Output] = l0
		return 0, nil

	case INV:
		g.wires[gate.Output] = a.L1
		return 0, nil

	case AND, OR:
		b := g.Wire(gate.Input1)
		c := ot.Wire{
			L0: g.NewLabel(),
		}
		c.L1 = c.L0
		c.L1.Xor(g.r)

		var o00, o01, o10 ot.Label
		if gate.Op == AND {
			o00, o01, o10 = c.L0, c.L0, c.L0
		} else {
			o00, o01, o10 = c.L0, c.L1, c.L1
		}
		table[idx(a.L0, b.L0)] = encrypt(g.alg, a.L0, b.L0, o00, id, &g.data)
		table[idx(a.L0, b.L1)] = encrypt(g.alg, a.L0, b.L1, o01, id, &g.data)
		table[idx(a.L1, b.L0)] = encrypt(g.alg, a.L1, b.L0, o10, id, &g.data)
		table[idx(a.L1, b.L1)] = encrypt(g.alg, a.L1, b.L1, c.L1, id, &g.data)

		g.wires[gate.Output] = c.L0
		return 4, nil

	default:
		return 0, errors.Newf("invalid gate type %s", gate.Op)
	}
}

// Evaluator evaluates the garbled circuit for one evaluation lane. It
// holds the active label of each wire slot.
type Evaluator struct {
	alg   cipher.Block
	wires []ot.Label
	data  ot.LabelData
}

// NewEvaluator creates a lane evaluator.
func NewEvaluator(alg cipher.Block, numWires int) *Evaluator {
	return &Evaluator{
		alg:   alg,
		wires: make([]ot.Label, numWires),
	}
}

// SetWire sets the active label of the wire slot.
func (e *Evaluator) SetWire(w Wire, l ot.Label) {
	e.wires[w] = l
}

// Wire returns the active label of the wire slot.
func (e *Evaluator) Wire(w Wire) ot.Label {
	return e.wires[w]
}

// Eval evaluates the gate id with its garbled table rows.
func (e *Evaluator) Eval(gate *Gate, id uint64, table []ot.Label) error {
	a := e.wires[gate.Input0]

	switch gate.Op {
	case XOR, XNOR:
		a.Xor(e.wires[gate.Input1])
		e.wires[gate.Output] = a

	case INV:
		e.wires[gate.Output] = a

	case AND, OR:
		if len(table) < 4 {
			return errors.Newf("gate %d: short table: %d", id, len(table))
		}
		b := e.wires[gate.Input1]
		e.wires[gate.Output] = decrypt(e.alg, a, b, id, table[idx(a, b)],
			&e.data)

	default:
		return errors.Newf("invalid gate type %s", gate.Op)
	}
	return nil
}
