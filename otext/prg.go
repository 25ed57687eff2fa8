//
// prg.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"crypto/cipher"
	"crypto/sha256"
	"io"

	"github.com/markkurossi/mpcbench/ot"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

const prgInfo = "mpcbench iknp column"

// newPrg creates a stateful column PRG from the base OT seed. The
// 128-bit seed is expanded into a ChaCha20 key with HKDF.
func newPrg(seed ot.Label) (cipher.Stream, error) {
	var ld ot.LabelData
	kdf := hkdf.New(sha256.New, seed.Bytes(&ld), nil, []byte(prgInfo))

	var key [chacha20.KeySize]byte
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return nil, err
	}
	var nonce [chacha20.NonceSize]byte
	return chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
}

// prg fills buf with the next bytes of the stream.
func prg(c cipher.Stream, buf []byte) {
	clear(buf)
	c.XORKeyStream(buf, buf)
}

func xor(dst, src []byte) {
	l := len(dst)
	if len(src) < l {
		l = len(src)
	}
	for i := 0; i < l; i++ {
		dst[i] ^= src[i]
	}
}
