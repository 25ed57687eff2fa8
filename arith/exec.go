//
// exec.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package arith

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/share"
	"github.com/taurusgroup/multi-party-sig/pkg/pool"
)

// exchange runs one message exchange with the peer. The SERVER sends
// first and the CLIENT receives first so that large symmetric
// transfers never fill both connection buffers at the same time.
func exchange(conn *p2p.Conn, role share.Role, send func() error,
	receive func() error) error {

	if role == share.Server {
		if err := send(); err != nil {
			return err
		}
		if err := conn.Flush(); err != nil {
			return err
		}
		return receive()
	}
	if err := receive(); err != nil {
		return err
	}
	if err := send(); err != nil {
		return err
	}
	return conn.Flush()
}

func (c *Circuit) sample(label string, cols ...string) {
	if c.Timing != nil {
		c.Timing.Sample(label, cols)
	}
}

func (c *Circuit) verbosef(format string, a ...interface{}) {
	if c.config.Verbose {
		fmt.Printf(format, a...)
	}
}

// Exec implements share.Executor.Exec.
func (c *Circuit) Exec(conn *p2p.Conn, role share.Role,
	oti share.OTFactory) error {

	if role != share.Server && role != share.Client {
		return errors.Newf("arith: invalid role %s", role)
	}
	if len(c.outputs) == 0 {
		return errors.New("arith: circuit has no outputs")
	}
	if err := c.handshake(conn); err != nil {
		return err
	}
	c.sample("Init", fmt.Sprintf("%d muls", c.numMuls))

	c.role = role
	c.newResults()

	// One triple per multiplication and lane.
	var bits []int
	for _, g := range c.gates {
		if g.op == OpMul {
			for lane := 0; lane < c.lanes; lane++ {
				bits = append(bits, g.bits)
			}
		}
	}
	c.verbosef(" - Generating %d triples...\n", len(bits))
	triples, err := NewTriples(conn, role, oti, c.config.GetRandom(), bits)
	if err != nil {
		return err
	}
	c.sample("Triples")

	wires := c.newWires()
	if err := c.shareInputs(conn, role, wires); err != nil {
		return err
	}
	c.verbosef(" - Evaluating...\n")

	pl := pool.NewPool(c.config.GetThreads())
	defer pl.TearDown()

	for _, layer := range c.layers() {
		if err := c.evalLayer(conn, role, pl, layer, wires,
			triples); err != nil {
			return err
		}
	}
	c.sample("Eval")

	if err := c.openOutputs(conn, role, wires); err != nil {
		return err
	}
	c.sample("Result")

	return nil
}

func (c *Circuit) handshake(conn *p2p.Conn) error {
	digest := c.Digest()
	if err := conn.SendUint64(digest); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	peer, err := conn.ReceiveUint64()
	if err != nil {
		return errors.Wrap(err, "arith: receiving circuit digest")
	}
	if peer != digest {
		return errors.Newf("arith: circuit digest mismatch: %x != %x",
			digest, peer)
	}
	return nil
}

// shareInputs creates the shares of the inputs and constants. The
// input owner keeps x-r and sends the random r to the peer. The
// SERVER holds the constants.
func (c *Circuit) shareInputs(conn *p2p.Conn, role share.Role,
	wires [][]uint64) error {

	send := func() error {
		for _, g := range c.gates {
			if g.op != OpInput || g.role != role {
				continue
			}
			m := mask(g.bits)
			masks, err := randomValues(c.config.GetRandom(), c.lanes)
			if err != nil {
				return err
			}
			for lane := 0; lane < c.lanes; lane++ {
				r := masks[lane] & m
				wires[g.out][lane] = (c.inputValue(g.idx, lane) - r) & m
				if err := conn.SendUint64(r); err != nil {
					return errors.Wrap(err, "arith: sending inputs")
				}
			}
		}
		return nil
	}
	receive := func() error {
		for _, g := range c.gates {
			if g.op != OpInput || g.role == role {
				continue
			}
			for lane := 0; lane < c.lanes; lane++ {
				r, err := conn.ReceiveUint64()
				if err != nil {
					return errors.Wrap(err, "arith: receiving inputs")
				}
				wires[g.out][lane] = r & mask(g.bits)
			}
		}
		return nil
	}
	if err := exchange(conn, role, send, receive); err != nil {
		return err
	}

	for _, g := range c.gates {
		if g.op != OpConst {
			continue
		}
		var v uint64
		if role == share.Server {
			v = g.value
		}
		for lane := 0; lane < c.lanes; lane++ {
			wires[g.out][lane] = v
		}
	}
	return nil
}

// layers groups the multiplication gates by their multiplicative
// depth. The gates of one layer are opened in one round.
func (c *Circuit) layers() [][]gate {
	depth := make([]int, c.numWires)
	var result [][]gate

	for _, g := range c.gates {
		if g.op != OpMul {
			continue
		}
		d := max(depth[g.a], depth[g.b]) + 1
		depth[g.out] = d
		for len(result) < d {
			result = append(result, nil)
		}
		result[d-1] = append(result[d-1], g)
	}
	return result
}

// evalLayer evaluates one layer of multiplications with the Beaver
// triples. Both parties open d=x-a and e=y-b and compute their share
// z = c + d*b + e*a, the SERVER adding d*e.
func (c *Circuit) evalLayer(conn *p2p.Conn, role share.Role, pl *pool.Pool,
	layer []gate, wires [][]uint64, triples []Triple) error {

	ds := make([][]uint64, len(layer))
	es := make([][]uint64, len(layer))
	for i, g := range layer {
		m := mask(g.bits)
		ds[i] = make([]uint64, c.lanes)
		es[i] = make([]uint64, c.lanes)
		for lane := 0; lane < c.lanes; lane++ {
			t := triples[g.idx*c.lanes+lane]
			ds[i][lane] = (wires[g.a][lane] - t.A) & m
			es[i][lane] = (wires[g.b][lane] - t.B) & m
		}
	}

	send := func() error {
		for i := range layer {
			for lane := 0; lane < c.lanes; lane++ {
				if err := conn.SendUint64(ds[i][lane]); err != nil {
					return err
				}
				if err := conn.SendUint64(es[i][lane]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	peerD := make([][]uint64, len(layer))
	peerE := make([][]uint64, len(layer))
	receive := func() error {
		for i := range layer {
			peerD[i] = make([]uint64, c.lanes)
			peerE[i] = make([]uint64, c.lanes)
			for lane := 0; lane < c.lanes; lane++ {
				d, err := conn.ReceiveUint64()
				if err != nil {
					return err
				}
				e, err := conn.ReceiveUint64()
				if err != nil {
					return err
				}
				peerD[i][lane] = d
				peerE[i][lane] = e
			}
		}
		return nil
	}
	if err := exchange(conn, role, send, receive); err != nil {
		return errors.Wrap(err, "arith: opening products")
	}

	pl.Parallelize(c.lanes, func(lane int) interface{} {
		for i, g := range layer {
			m := mask(g.bits)
			t := triples[g.idx*c.lanes+lane]
			d := (ds[i][lane] + peerD[i][lane]) & m
			e := (es[i][lane] + peerE[i][lane]) & m

			z := t.C + d*t.B + e*t.A
			if role == share.Server {
				z += d * e
			}
			wires[g.out][lane] = z & m
		}
		return nil
	})
	return nil
}

// openOutputs reveals the outputs to their recipients.
func (c *Circuit) openOutputs(conn *p2p.Conn, role share.Role,
	wires [][]uint64) error {

	peer := role.Peer()

	send := func() error {
		for _, out := range c.outputs {
			if !out.to.Receives(peer) {
				continue
			}
			for lane := 0; lane < c.lanes; lane++ {
				if err := conn.SendUint64(wires[out.wire][lane]); err != nil {
					return errors.Wrap(err, "arith: sending outputs")
				}
			}
		}
		return nil
	}
	receive := func() error {
		for idx, out := range c.outputs {
			if !out.to.Receives(role) {
				continue
			}
			m := mask(out.share.BitLength)
			for lane := 0; lane < c.lanes; lane++ {
				v, err := conn.ReceiveUint64()
				if err != nil {
					return errors.Wrap(err, "arith: receiving outputs")
				}
				c.results[idx][lane] = (wires[out.wire][lane] + v) & m
			}
		}
		return nil
	}
	return exchange(conn, role, send, receive)
}
