//
// iknp.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package otext implements the IKNP oblivious transfer extension.
package otext

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/ot"
)

const (
	hashBatchSize = 8
)

var (
	_ ot.OT = &IKNP{}
)

// IKNP implements chosen message OT over the IKNP correlated OT
// extension. It implements the ot.OT interface so it can replace the
// base OT wherever many transfers are needed. One IKNP instance
// transfers in one direction; it is either a sender or a receiver.
type IKNP struct {
	base ot.OT
	r    io.Reader
	io   ot.IO
	s    *IKNPSender
	rcv  *IKNPReceiver
}

// NewIKNP creates an IKNP OT running its K base OTs with base.
func NewIKNP(base ot.OT, r io.Reader) *IKNP {
	return &IKNP{
		base: base,
		r:    r,
	}
}

// InitSender implements ot.OT.InitSender.
func (iknp *IKNP) InitSender(io ot.IO) error {
	if iknp.s != nil || iknp.rcv != nil {
		return errors.New("iknp: already initialized")
	}
	// The extension sender is the base OT receiver.
	if err := iknp.base.InitReceiver(io); err != nil {
		return err
	}
	s, err := NewIKNPSender(iknp.base, io, iknp.r)
	if err != nil {
		return err
	}
	iknp.io = io
	iknp.s = s
	return nil
}

// InitReceiver implements ot.OT.InitReceiver.
func (iknp *IKNP) InitReceiver(io ot.IO) error {
	if iknp.s != nil || iknp.rcv != nil {
		return errors.New("iknp: already initialized")
	}
	if err := iknp.base.InitSender(io); err != nil {
		return err
	}
	rcv, err := NewIKNPReceiver(iknp.base, io, iknp.r)
	if err != nil {
		return err
	}
	iknp.io = io
	iknp.rcv = rcv
	return nil
}

// Send implements ot.OT.Send.
func (iknp *IKNP) Send(wires []ot.Wire) error {
	if iknp.s == nil {
		return errors.New("iknp: not initialized as sender")
	}
	if len(wires) == 0 {
		return nil
	}
	b0, err := iknp.s.Send(len(wires))
	if err != nil {
		return err
	}
	seed, err := ot.NewLabel(iknp.r)
	if err != nil {
		return err
	}
	var ld ot.LabelData
	if err := iknp.io.SendLabel(seed, &ld); err != nil {
		return err
	}
	h := ot.NewMITCCRH(seed, hashBatchSize)

	pad := make([]ot.Label, 2*hashBatchSize)
	for i := 0; i < len(wires); i += hashBatchSize {
		end := i + hashBatchSize
		if end > len(wires) {
			end = len(wires)
		}
		for j := i; j < end; j++ {
			pad[2*(j-i)] = b0[j]
			pad[2*(j-i)+1] = b0[j]
			pad[2*(j-i)+1].Xor(iknp.s.Delta)
		}
		h.Hash(pad, hashBatchSize, 2)

		for j := i; j < end; j++ {
			pad[2*(j-i)].Xor(wires[j].L0)
			pad[2*(j-i)+1].Xor(wires[j].L1)
		}
		for j := 0; j < 2*(end-i); j++ {
			if err := iknp.io.SendLabel(pad[j], &ld); err != nil {
				return err
			}
		}
	}
	return iknp.io.Flush()
}

// Receive implements ot.OT.Receive.
func (iknp *IKNP) Receive(flags []bool, result []ot.Label) error {
	if iknp.rcv == nil {
		return errors.New("iknp: not initialized as receiver")
	}
	if len(flags) != len(result) {
		return errors.Newf("iknp: flags and result length mismatch: %d != %d",
			len(flags), len(result))
	}
	if len(flags) == 0 {
		return nil
	}
	if err := iknp.rcv.Receive(flags, result); err != nil {
		return err
	}

	var seed ot.Label
	var ld ot.LabelData
	if err := iknp.io.ReceiveLabel(&seed, &ld); err != nil {
		return err
	}
	h := ot.NewMITCCRH(seed, hashBatchSize)

	pad := make([]ot.Label, hashBatchSize)
	var e0, e1 ot.Label

	for i := 0; i < len(flags); i += hashBatchSize {
		end := i + hashBatchSize
		if end > len(flags) {
			end = len(flags)
		}
		copy(pad, result[i:end])
		h.Hash(pad, hashBatchSize, 1)

		for j := i; j < end; j++ {
			if err := iknp.io.ReceiveLabel(&e0, &ld); err != nil {
				return err
			}
			if err := iknp.io.ReceiveLabel(&e1, &ld); err != nil {
				return err
			}
			if flags[j] {
				result[j] = e1
			} else {
				result[j] = e0
			}
			result[j].Xor(pad[j-i])
		}
	}
	return nil
}
