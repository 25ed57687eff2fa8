//
// exec.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package yao

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/share"
	"github.com/taurusgroup/multi-party-sig/pkg/pool"
)

// Number of gates garbled and transferred in one batch.
const gateBatch = 4096

// Exec implements share.Executor.Exec.
func (c *Circuit) Exec(conn *p2p.Conn, role share.Role,
	oti share.OTFactory) error {

	circ, err := c.Compile()
	if err != nil {
		return err
	}
	if err := c.handshake(conn, circ); err != nil {
		return err
	}
	c.sample("Init", circ)

	pl := pool.NewPool(c.config.GetThreads())
	defer pl.TearDown()

	c.role = role
	c.newResults()

	switch role {
	case share.Server:
		return c.garble(conn, circ, oti, pl)
	case share.Client:
		return c.evaluate(conn, circ, oti, pl)
	default:
		return errors.Newf("yao: invalid role %s", role)
	}
}

func (c *Circuit) sample(label string, circ *circuit.Circuit) {
	if c.Timing == nil {
		return
	}
	var cols []string
	if label == "Init" {
		cols = append(cols, fmt.Sprintf("%d gates", len(circ.Gates)))
	}
	c.Timing.Sample(label, cols)
}

func (c *Circuit) verbosef(format string, a ...interface{}) {
	if c.config.Verbose {
		fmt.Printf(format, a...)
	}
}

// handshake verifies that both peers built the same circuit with the
// same number of lanes.
func (c *Circuit) handshake(conn *p2p.Conn, circ *circuit.Circuit) error {
	digest := circ.Digest()

	if err := conn.SendUint64(digest); err != nil {
		return err
	}
	if err := conn.SendUint32(c.lanes); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	peerDigest, err := conn.ReceiveUint64()
	if err != nil {
		return errors.Wrap(err, "yao: receiving circuit digest")
	}
	peerLanes, err := conn.ReceiveUint32()
	if err != nil {
		return errors.Wrap(err, "yao: receiving lanes")
	}
	if peerDigest != digest {
		return errors.Newf("yao: circuit digest mismatch: %x != %x",
			digest, peerDigest)
	}
	if peerLanes != c.lanes {
		return errors.Wrapf(share.ErrLanes, "yao: peer has %d lanes, we %d",
			peerLanes, c.lanes)
	}
	return nil
}

func batchRows(circ *circuit.Circuit, start, end int) int {
	var rows int
	for i := start; i < end; i++ {
		rows += circ.Gates[i].Rows()
	}
	return rows
}

func parallel(pl *pool.Pool, count int, f func(lane int) error) error {
	results := pl.Parallelize(count, func(lane int) interface{} {
		return f(lane)
	})
	for _, r := range results {
		if err, ok := r.(error); ok && err != nil {
			return err
		}
	}
	return nil
}

func (c *Circuit) garble(conn *p2p.Conn, circ *circuit.Circuit,
	oti share.OTFactory, pl *pool.Pool) error {

	rand := c.config.GetRandom()

	var key [32]byte
	if _, err := io.ReadFull(rand, key[:]); err != nil {
		return err
	}
	alg, err := circuit.NewCipher(key[:])
	if err != nil {
		return err
	}
	r, err := circuit.NewDelta(rand)
	if err != nil {
		return err
	}
	garblers := make([]*circuit.Garbler, c.lanes)
	for lane := range garblers {
		seed, err := ot.NewLabel(rand)
		if err != nil {
			return err
		}
		garblers[lane], err = circuit.NewGarbler(alg, r, seed, circ.NumWires)
		if err != nil {
			return err
		}
	}
	if err := conn.SendData(key[:]); err != nil {
		return errors.Wrap(err, "garbler: sending key")
	}

	// Constants and our inputs.
	var ld ot.LabelData
	var otWires []ot.Wire
	for lane, g := range garblers {
		g.SetWire(circuit.ZeroWire, g.NewLabel())
		g.SetWire(circuit.OneWire, g.NewLabel())
		if err := conn.SendLabel(g.Wire(circuit.ZeroWire).L0, &ld); err != nil {
			return err
		}
		if err := conn.SendLabel(g.Wire(circuit.OneWire).L1, &ld); err != nil {
			return err
		}
		for idx, arg := range circ.Inputs {
			for bit, w := range arg.Wires {
				g.SetWire(w, g.NewLabel())
				if share.Role(arg.Party) == share.Client {
					otWires = append(otWires, g.Wire(w))
					continue
				}
				label := circuit.LabelForBit(g.Wire(w),
					c.inputBit(idx, lane, bit))
				if err := conn.SendLabel(label, &ld); err != nil {
					return errors.Wrap(err, "garbler: sending inputs")
				}
			}
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}

	// Peer inputs with OT.
	if len(otWires) > 0 {
		c.verbosef(" - Sending %d input labels with OT\n", len(otWires))
		o, err := oti()
		if err != nil {
			return err
		}
		if err := o.InitSender(conn); err != nil {
			return errors.Wrap(err, "garbler: OT init")
		}
		if err := o.Send(otWires); err != nil {
			return errors.Wrap(err, "garbler: OT")
		}
	}
	c.sample("OT", circ)

	c.verbosef(" - Garbling...\n")

	tables := make([][]ot.Label, c.lanes)
	for lane := range tables {
		tables[lane] = make([]ot.Label, 4*gateBatch)
	}
	for start := 0; start < len(circ.Gates); start += gateBatch {
		end := min(start+gateBatch, len(circ.Gates))
		rows := batchRows(circ, start, end)

		err := parallel(pl, c.lanes, func(lane int) error {
			g := garblers[lane]
			table := tables[lane]
			var n int
			for id := start; id < end; id++ {
				count, err := g.Garble(&circ.Gates[id], uint64(id), table[n:])
				if err != nil {
					return err
				}
				n += count
			}
			if n != rows {
				return errors.Newf("garbler: rows %d != %d", n, rows)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for lane := range tables {
			for _, label := range tables[lane][:rows] {
				if err := conn.SendLabel(label, &ld); err != nil {
					return errors.Wrap(err, "garbler: sending tables")
				}
			}
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	c.sample("Garble", circ)

	// Decoding bits for the evaluator outputs.
	for _, arg := range circ.Outputs {
		if !share.Role(arg.Party).Receives(share.Client) {
			continue
		}
		data := make([]byte, 0, c.lanes*len(arg.Wires))
		for _, g := range garblers {
			for _, w := range arg.Wires {
				var bit byte
				if g.Wire(w).L0.S() {
					bit = 1
				}
				data = append(data, bit)
			}
		}
		if err := conn.SendData(data); err != nil {
			return errors.Wrap(err, "garbler: sending decoding bits")
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}

	// Our outputs.
	var label ot.Label
	for idx, arg := range circ.Outputs {
		if !share.Role(arg.Party).Receives(share.Server) {
			continue
		}
		for lane, g := range garblers {
			var result uint64
			for bit, w := range arg.Wires {
				if err := conn.ReceiveLabel(&label, &ld); err != nil {
					return errors.Wrap(err, "garbler: receiving outputs")
				}
				v, err := circuit.BitFromLabel(g.Wire(w), label)
				if err != nil {
					return errors.Wrapf(err, "garbler: output %d", idx)
				}
				if v {
					result |= 1 << bit
				}
			}
			c.results[idx][lane] = result
		}
	}
	c.sample("Result", circ)

	return nil
}

func (c *Circuit) evaluate(conn *p2p.Conn, circ *circuit.Circuit,
	oti share.OTFactory, pl *pool.Pool) error {

	key, err := conn.ReceiveData()
	if err != nil {
		return errors.Wrap(err, "evaluator: receiving key")
	}
	alg, err := circuit.NewCipher(key)
	if err != nil {
		return err
	}
	evaluators := make([]*circuit.Evaluator, c.lanes)
	for lane := range evaluators {
		evaluators[lane] = circuit.NewEvaluator(alg, circ.NumWires)
	}

	// Constants and peer inputs.
	var ld ot.LabelData
	var label ot.Label
	var otWires []circuit.Wire
	var flags []bool
	var otLanes []int
	for lane, e := range evaluators {
		if err := conn.ReceiveLabel(&label, &ld); err != nil {
			return err
		}
		e.SetWire(circuit.ZeroWire, label)
		if err := conn.ReceiveLabel(&label, &ld); err != nil {
			return err
		}
		e.SetWire(circuit.OneWire, label)

		for idx, arg := range circ.Inputs {
			for bit, w := range arg.Wires {
				if share.Role(arg.Party) == share.Client {
					otWires = append(otWires, w)
					otLanes = append(otLanes, lane)
					flags = append(flags, c.inputBit(idx, lane, bit))
					continue
				}
				if err := conn.ReceiveLabel(&label, &ld); err != nil {
					return errors.Wrap(err, "evaluator: receiving inputs")
				}
				e.SetWire(w, label)
			}
		}
	}

	// Our inputs with OT.
	if len(otWires) > 0 {
		c.verbosef(" - Receiving %d input labels with OT\n", len(otWires))
		o, err := oti()
		if err != nil {
			return err
		}
		if err := o.InitReceiver(conn); err != nil {
			return errors.Wrap(err, "evaluator: OT init")
		}
		labels := make([]ot.Label, len(flags))
		if err := o.Receive(flags, labels); err != nil {
			return errors.Wrap(err, "evaluator: OT")
		}
		for i, w := range otWires {
			evaluators[otLanes[i]].SetWire(w, labels[i])
		}
	}
	c.sample("OT", circ)

	c.verbosef(" - Evaluating...\n")

	tables := make([][]ot.Label, c.lanes)
	for lane := range tables {
		tables[lane] = make([]ot.Label, 4*gateBatch)
	}
	for start := 0; start < len(circ.Gates); start += gateBatch {
		end := min(start+gateBatch, len(circ.Gates))
		rows := batchRows(circ, start, end)

		for lane := range tables {
			for i := 0; i < rows; i++ {
				if err := conn.ReceiveLabel(&tables[lane][i], &ld); err != nil {
					return errors.Wrap(err, "evaluator: receiving tables")
				}
			}
		}
		err := parallel(pl, c.lanes, func(lane int) error {
			e := evaluators[lane]
			table := tables[lane]
			var n int
			for id := start; id < end; id++ {
				gate := &circ.Gates[id]
				count := gate.Rows()
				if err := e.Eval(gate, uint64(id),
					table[n:n+count]); err != nil {
					return err
				}
				n += count
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	c.sample("Eval", circ)

	// Our outputs.
	for idx, arg := range circ.Outputs {
		if !share.Role(arg.Party).Receives(share.Client) {
			continue
		}
		data, err := conn.ReceiveData()
		if err != nil {
			return errors.Wrap(err, "evaluator: receiving decoding bits")
		}
		if len(data) != c.lanes*len(arg.Wires) {
			return errors.Newf("evaluator: output %d: got %d decoding bits",
				idx, len(data))
		}
		for lane, e := range evaluators {
			var result uint64
			for bit, w := range arg.Wires {
				v := e.Wire(w).S()
				if data[lane*len(arg.Wires)+bit] != 0 {
					v = !v
				}
				if v {
					result |= 1 << bit
				}
			}
			c.results[idx][lane] = result
		}
	}

	// Peer outputs.
	for _, arg := range circ.Outputs {
		if !share.Role(arg.Party).Receives(share.Server) {
			continue
		}
		for _, e := range evaluators {
			for _, w := range arg.Wires {
				if err := conn.SendLabel(e.Wire(w), &ld); err != nil {
					return errors.Wrap(err, "evaluator: sending outputs")
				}
			}
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	c.sample("Result", circ)

	return nil
}
