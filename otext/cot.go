//
// cot.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf

package otext

import (
	"crypto/cipher"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/ot"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// Chunk size in bytes. Must be multiple of K.
	chunkSize = 8 * 1024

	// The maximum number of byte-rows in a chunk.
	chunkByteRows = chunkSize / K

	// The number of label rows in a chunk.
	chunkRows = chunkByteRows * 8
)

// IKNPSender implements the random correlated OT sender.
type IKNPSender struct {
	// Delta defines the correlation delta: b1 = b0 ⊕ Δ
	Delta ot.Label
	io    ot.IO
	g     [K]cipher.Stream
}

// NewIKNPSender creates a new sender. The sender runs the base OT as
// the receiver, selecting the seeds with the bits of a random delta.
func NewIKNPSender(base ot.OT, io ot.IO, r io.Reader) (*IKNPSender, error) {
	delta, err := ot.NewLabel(r)
	if err != nil {
		return nil, err
	}
	s := &IKNPSender{
		Delta: delta,
		io:    io,
	}

	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}

	var seeds [K]ot.Label
	if err := base.Receive(flags[:], seeds[:]); err != nil {
		return nil, errors.Wrap(err, "iknp: base OT")
	}
	for i := 0; i < K; i++ {
		s.g[i], err = newPrg(seeds[i])
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send extends n correlated OTs. The function returns the b0
// labels. The b1 labels are b0[i] ⊕ s.Delta.
func (s *IKNPSender) Send(n int) ([]ot.Label, error) {
	result := make([]ot.Label, n)
	var t [chunkSize]byte

	for ofs := 0; ofs < n; {
		// The receiver sends the K columns of the chunk.
		chunk, err := s.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 || len(chunk)%K != 0 || len(chunk) > chunkSize {
			return nil, errors.Newf("iknp: invalid chunk size: %v", len(chunk))
		}
		byteRows := len(chunk) / K

		for i := 0; i < K; i++ {
			col := t[i*byteRows : (i+1)*byteRows]
			prg(s.g[i], col)
			if s.Delta.Bit(i) == 1 {
				xor(col, chunk[i*byteRows:(i+1)*byteRows])
			}
		}
		createLabels(result[ofs:], t[:], byteRows)

		ofs += byteRows * 8
	}
	return result, nil
}

// IKNPReceiver implements the random correlated OT receiver.
type IKNPReceiver struct {
	io ot.IO
	g0 [K]cipher.Stream
	g1 [K]cipher.Stream
}

// NewIKNPReceiver creates a new receiver. The receiver runs the base
// OT as the sender with K random seed pairs.
func NewIKNPReceiver(base ot.OT, io ot.IO, r io.Reader) (
	*IKNPReceiver, error) {

	var wires [K]ot.Wire
	var err error
	for i := 0; i < K; i++ {
		wires[i].L0, err = ot.NewLabel(r)
		if err != nil {
			return nil, err
		}
		wires[i].L1, err = ot.NewLabel(r)
		if err != nil {
			return nil, err
		}
	}
	if err := base.Send(wires[:]); err != nil {
		return nil, errors.Wrap(err, "iknp: base OT")
	}

	rcv := &IKNPReceiver{
		io: io,
	}
	for i := 0; i < K; i++ {
		rcv.g0[i], err = newPrg(wires[i].L0)
		if err != nil {
			return nil, err
		}
		rcv.g1[i], err = newPrg(wires[i].L1)
		if err != nil {
			return nil, err
		}
	}
	return rcv, nil
}

// Receive extends len(b) correlated OTs with the selection flags
// b. The result labels implement the correlation: result[i] = b0[i] ⊕
// b[i]*Δ.
func (r *IKNPReceiver) Receive(b []bool, result []ot.Label) error {
	if len(b) != len(result) {
		return errors.Newf("iknp: flags and result length mismatch: %d != %d",
			len(b), len(result))
	}
	bbuf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			bbuf[i/8] |= 1 << (i % 8)
		}
	}

	var chunk, out [chunkSize]byte
	var tmp [chunkByteRows]byte

	for ofs := 0; ofs < len(b); {
		rows := chunkRows
		if avail := len(b) - ofs; rows > avail {
			rows = avail
		}
		byteRows := (rows + 7) / 8

		for i := 0; i < K; i++ {
			col := chunk[i*byteRows : (i+1)*byteRows]
			prg(r.g0[i], col)
			prg(r.g1[i], tmp[:byteRows])

			// u = G(k0) ⊕ G(k1) ⊕ b
			xor(tmp[:byteRows], col)
			xor(tmp[:byteRows], bbuf[ofs/8:])

			copy(out[i*byteRows:], tmp[:byteRows])
		}
		if err := r.io.SendData(out[:byteRows*K]); err != nil {
			return err
		}
		createLabels(result[ofs:], chunk[:], byteRows)

		ofs += rows
	}
	return r.io.Flush()
}

// createLabels transposes the K columns of w bytes in buf into label
// rows.
func createLabels(l []ot.Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		var label ot.Label
		for j := 0; j < K; j++ {
			label.SetBit(j, uint((buf[j*w+row]>>bit)&1))
		}
		l[i] = label
	}
}
