//
// triples.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package arith

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/share"
)

// Triple is one party's share of a Beaver triple (a, b, c=a*b).
type Triple struct {
	A uint64
	B uint64
	C uint64
}

func randomValues(r io.Reader, n int) ([]uint64, error) {
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	result := make([]uint64, n)
	for i := range result {
		result[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return result, nil
}

// crossSender creates the OT messages for the cross products x*y
// where the sender holds x and the receiver the bits of y. The
// message pair of bit j is (r, r + x*2^j). The function returns the
// sender's shares of the products.
func crossSender(r io.Reader, xs []uint64, bits []int) (
	[]ot.Wire, []uint64, error) {

	var count int
	for _, b := range bits {
		count += b
	}
	masks, err := randomValues(r, count)
	if err != nil {
		return nil, nil, err
	}
	wires := make([]ot.Wire, 0, count)
	shares := make([]uint64, len(xs))

	for i, x := range xs {
		m := mask(bits[i])
		var sum uint64
		for j := 0; j < bits[i]; j++ {
			r0 := masks[len(wires)] & m
			r1 := (r0 + x<<j) & m
			wires = append(wires, ot.Wire{
				L0: ot.NewValue(r0),
				L1: ot.NewValue(r1),
			})
			sum += r0
		}
		shares[i] = -sum & m
	}
	return wires, shares, nil
}

// crossFlags returns the OT selection bits of the values ys.
func crossFlags(ys []uint64, bits []int) []bool {
	var flags []bool
	for i, y := range ys {
		for j := 0; j < bits[i]; j++ {
			flags = append(flags, (y>>j)&1 == 1)
		}
	}
	return flags
}

// crossReceiver sums the received OT messages into the receiver's
// shares of the cross products.
func crossReceiver(labels []ot.Label, bits []int) []uint64 {
	shares := make([]uint64, len(bits))
	var ofs int
	for i, b := range bits {
		var sum uint64
		for j := 0; j < b; j++ {
			sum += labels[ofs].Value()
			ofs++
		}
		shares[i] = sum & mask(b)
	}
	return shares
}

// NewTriples creates count Beaver triples with the peer. The bits
// gives the ring size of each triple. Both parties run two OT
// instances: in the first one the SERVER is the sender and in the
// second one the CLIENT.
func NewTriples(conn *p2p.Conn, role share.Role, oti share.OTFactory,
	r io.Reader, bits []int) ([]Triple, error) {

	if len(bits) == 0 {
		return nil, nil
	}
	as, err := randomValues(r, len(bits))
	if err != nil {
		return nil, err
	}
	bs, err := randomValues(r, len(bits))
	if err != nil {
		return nil, err
	}
	for i := range as {
		as[i] &= mask(bits[i])
		bs[i] &= mask(bits[i])
	}

	var ots [2]ot.OT
	for i := range ots {
		ots[i], err = oti()
		if err != nil {
			return nil, err
		}
		if share.Role(i) == role {
			err = ots[i].InitSender(conn)
		} else {
			err = ots[i].InitReceiver(conn)
		}
		if err != nil {
			return nil, errors.Wrap(err, "triples: OT init")
		}
	}

	// Shares of our a times the peer's b, and the peer's a times our
	// b.
	var sent, received []uint64
	for i := range ots {
		if share.Role(i) == role {
			wires, shares, err := crossSender(r, as, bits)
			if err != nil {
				return nil, err
			}
			if err := ots[i].Send(wires); err != nil {
				return nil, errors.Wrap(err, "triples: OT send")
			}
			sent = shares
		} else {
			flags := crossFlags(bs, bits)
			labels := make([]ot.Label, len(flags))
			if err := ots[i].Receive(flags, labels); err != nil {
				return nil, errors.Wrap(err, "triples: OT receive")
			}
			received = crossReceiver(labels, bits)
		}
	}

	triples := make([]Triple, len(bits))
	for i := range triples {
		triples[i] = Triple{
			A: as[i],
			B: bs[i],
			C: (as[i]*bs[i] + sent[i] + received[i]) & mask(bits[i]),
		}
	}
	return triples, nil
}
