//
// ot.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

// Package ot implements oblivious transfer protocols.
package ot

import (
	"crypto/elliptic"

	"github.com/cockroachdb/errors"
)

// OT defines the base 1-out-of-2 Oblivious Transfer protocol. The
// sender uses the Send function to send a []Wire array where each
// wire has zero and one Label. The receiver calls Receive with a
// []bool array of selection bits. The higher level protocol must
// ensure the []Wire and []bool array lengths match.
type OT interface {
	// InitSender initializes the OT sender.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver.
	InitReceiver(io IO) error

	// Send sends the wire labels with OT.
	Send(wires []Wire) error

	// Receive receives the wire labels with OT based on the flag values.
	Receive(flags []bool, result []Label) error
}

// CurveForSecurity returns the elliptic curve giving at least the
// security level bits for the base OT.
func CurveForSecurity(bits int) (elliptic.Curve, error) {
	switch bits {
	case 80, 112, 128:
		return elliptic.P256(), nil
	case 192:
		return elliptic.P384(), nil
	case 256:
		return elliptic.P521(), nil
	default:
		return nil, errors.Newf("unsupported security level %d", bits)
	}
}
