//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Command otbench measures the oblivious transfer throughput of the
// base OT and the IKNP extension over an in-memory connection.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/p2p"
)

func main() {
	count := flag.Int("n", 100000, "number of transfers")
	security := flag.Int("s", env.DefaultSecurityLevel, "security level")
	base := flag.Bool("base", false, "use base OT without extension")
	flag.Parse()

	log.SetFlags(0)

	config := &env.Config{
		SecurityLevel: *security,
	}
	newOT := config.NewOT
	if *base {
		newOT = config.NewBaseOT
	}
	timing := circuit.NewTiming()
	if err := transfer(config, newOT, *count, timing); err != nil {
		log.Fatal(err)
	}
	timing.Print(os.Stdout)

	fmt.Printf("%d OTs: %.0f OT/s\n", *count,
		float64(*count)/timing.Total().Seconds())
}

func transfer(config *env.Config, newOT func() (ot.OT, error), count int,
	timing *circuit.Timing) error {

	sender, err := newOT()
	if err != nil {
		return err
	}
	receiver, err := newOT()
	if err != nil {
		return err
	}
	rand := config.GetRandom()

	wires := make([]ot.Wire, count)
	flags := make([]bool, count)
	for i := range wires {
		wires[i].L0, err = ot.NewLabel(rand)
		if err != nil {
			return err
		}
		wires[i].L1, err = ot.NewLabel(rand)
		if err != nil {
			return err
		}
		flags[i] = wires[i].L0.Bit(0) != wires[i].L1.Bit(0)
	}
	labels := make([]ot.Label, count)

	c0, c1 := p2p.Pipe()
	timing.Track(c0.Stats)
	done := make(chan error)

	go func() {
		err := receiver.InitReceiver(c1)
		if err == nil {
			err = receiver.Receive(flags, labels)
		}
		done <- err
		c1.Close()
	}()

	if err := sender.InitSender(c0); err != nil {
		return err
	}
	timing.Sample("Init", nil)

	if err := sender.Send(wires); err != nil {
		return err
	}
	if err := <-done; err != nil {
		return err
	}
	timing.Sample("Transfer", []string{fmt.Sprintf("%d OTs", count)})

	for i, l := range labels {
		expected := wires[i].L0
		if flags[i] {
			expected = wires[i].L1
		}
		if !l.Equal(expected) {
			return errors.Newf("transfer %d: invalid label", i)
		}
	}
	timing.Sample("Verify", nil)

	return c0.Close()
}
