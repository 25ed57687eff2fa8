//
// mitccrh.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Better Concrete Security for Half-Gates Garbling (in the
// Multi-Instance Setting)
//  - https://eprint.iacr.org/2019/1168.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
)

// MITCCRH implements the multi-instance tweakable circular
// correlation robust hash. Both peers must seed it with the same
// start point and call Hash with the same k sequence.
type MITCCRH struct {
	batchSize  int
	startPoint Label
	gid        uint64
	ciphers    []cipher.Block
	keyUsed    int
	tmp        []LabelData
}

// NewMITCCRH creates a new MITCCRH with the seed s and batchSize.
func NewMITCCRH(s Label, batchSize int) *MITCCRH {
	return &MITCCRH{
		batchSize:  batchSize,
		startPoint: s,
		ciphers:    make([]cipher.Block, batchSize),
		keyUsed:    batchSize,
	}
}

func (m *MITCCRH) renewKeys() {
	var ld LabelData
	for i := 0; i < m.batchSize; i++ {
		key := Label{
			D0: m.gid,
		}
		m.gid++
		key.Xor(m.startPoint)

		block, err := aes.NewCipher(key.Bytes(&ld))
		if err != nil {
			// AES accepts all 16 byte keys.
			panic(err)
		}
		m.ciphers[i] = block
	}
	m.keyUsed = 0
}

// Hash hashes k*h blocks in place. Each of the next k keys hashes h
// consecutive blocks of blks.
func (m *MITCCRH) Hash(blks []Label, k, h int) {
	if k > m.batchSize || m.batchSize%k != 0 || k*h != len(blks) {
		panic("mitccrh: invalid batch")
	}
	if m.keyUsed == m.batchSize {
		m.renewKeys()
	}
	if len(m.tmp) < len(blks) {
		m.tmp = make([]LabelData, len(blks))
	}
	for i := 0; i < len(blks); i++ {
		blks[i].GetData(&m.tmp[i])
	}
	for i := 0; i < k; i++ {
		c := m.ciphers[m.keyUsed+i]
		for j := 0; j < h; j++ {
			idx := i*h + j
			c.Encrypt(m.tmp[idx][:], m.tmp[idx][:])
		}
	}
	m.keyUsed += k

	var t Label
	for i := range blks {
		t.SetData(&m.tmp[i])
		blks[i].Xor(t)
	}
}
