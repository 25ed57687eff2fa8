//
// run.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package bench

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/chain"
	"github.com/markkurossi/mpcbench/party"
	"github.com/markkurossi/mpcbench/results"
)

// ErrMismatch is returned when a decoded lane differs from its clear
// reference value.
var ErrMismatch = errors.New("result mismatch")

const publishTimeout = 30 * time.Second

// Report describes the result of a run.
type Report[T chain.Number] struct {
	Bits      int
	NumValues int
	Values    []T
	Expected  T
	Record    *results.Record
}

func (opts *Options[T]) values(p *party.Party, owner int, v T) []uint64 {
	result := make([]uint64, opts.Lanes)
	if opts.Owners()[owner] != p.Role() {
		return result
	}
	raw := chain.Encode(v)
	for i := range result {
		result[i] = raw
	}
	return result
}

func (opts *Options[T]) inputBits() int {
	if opts.Domain == chain.FloatEmulated {
		return 64
	}
	return opts.Bits
}

// Run builds the chain with the party, executes it with the peer,
// and prints the result of each lane to w. Each lane is compared with
// its clear reference value and a mismatch returns ErrMismatch with
// the report.
func Run[T chain.Number](p *party.Party, opts *Options[T], w io.Writer) (
	*Report[T], error) {

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Domain == chain.FloatEmulated {
		fmt.Fprintf(w, "FLOATING POINT RUNNING: double input values: %s ; %s\n",
			FormatNumber(opts.X), FormatNumber(opts.Y))
	} else {
		fmt.Fprintf(w, "FIXED POINT RUNNING: uint64 input values: %s ; %s\n",
			FormatNumber(opts.X), FormatNumber(opts.Y))
	}

	c, err := p.Circuit(opts.Domain.Sharing())
	if err != nil {
		return nil, err
	}
	owners := opts.Owners()
	bits := opts.inputBits()

	x, err := c.PutInput(owners[0], opts.values(p, 0, opts.X), bits)
	if err != nil {
		return nil, err
	}
	y, err := c.PutInput(owners[1], opts.values(p, 1, opts.Y), bits)
	if err != nil {
		return nil, err
	}
	builder := &chain.Builder{
		Domain:    opts.Domain,
		Depth:     opts.Depth,
		Precision: opts.Precision,
	}
	out, err := builder.Build(c, x, y)
	if err != nil {
		return nil, err
	}
	p.Debugf("%s chain: depth=%d, lanes=%d, #gates=%d\n",
		opts.Domain, opts.Depth, opts.Lanes, p.NumGates())

	if err := p.Exec(); err != nil {
		return nil, err
	}
	outBits, nvals, raw, err := p.Decode(out)
	if err != nil {
		return nil, err
	}

	report := &Report[T]{
		Bits:      outBits,
		NumValues: nvals,
		Values:    chain.DecodeAll[T](raw),
		Expected: chain.Expected(opts.Domain, opts.X, opts.Y, opts.Depth,
			opts.Bits, opts.Precision),
		Record: results.NewRecord(),
	}

	r := report.Record
	r.Role = p.Role().String()
	r.Domain = opts.Domain.String()
	r.Depth = opts.Depth
	r.Lanes = nvals
	r.Bits = outBits
	if opts.Domain == chain.ScaledFixedPoint {
		r.Precision = opts.Precision
	}
	r.X = FormatNumber(opts.X)
	r.Y = FormatNumber(opts.Y)
	r.Gates = p.NumGates()
	r.Verified = true

	var mismatch error
	for i, v := range report.Values {
		fmt.Fprintf(w, "MUL RES: %s = %s * %s | nv: %d bitlen: %d\n",
			FormatNumber(v), r.X, r.Y, nvals, outBits)
		r.Results = append(r.Results, FormatNumber(v))

		if !chain.Equal(v, report.Expected) {
			r.Verified = false
			if mismatch == nil {
				mismatch = errors.Wrapf(ErrMismatch,
					"lane %d: got %s, expected %s", i, FormatNumber(v),
					FormatNumber(report.Expected))
			}
		}
	}
	r.SetTiming(p.Timing, p.Stats())

	return report, mismatch
}

// Main runs the benchmark with the command line arguments.
func Main(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("mulbench", flag.ContinueOnError)
	f, err := ParseFlags(fs, args)
	if err != nil {
		return err
	}
	domain, err := f.ChainDomain()
	if err != nil {
		return err
	}
	if domain == chain.FloatEmulated {
		return run[float64](f, w)
	}
	return run[uint64](f, w)
}

func run[T chain.Number](f *Flags, w io.Writer) error {
	opts, err := NewOptions[T](f)
	if err != nil {
		return err
	}
	if err := opts.Party.Validate(true); err != nil {
		return err
	}
	sinks, err := f.Sinks()
	if err != nil {
		return err
	}
	defer sinks.Close()

	p, err := party.New(opts.Party)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := Run(p, opts, w)
	if report == nil {
		return err
	}
	if f.Verbose {
		p.Timing.Print(w)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if perr := sinks.Publish(ctx, report.Record); perr != nil {
		err = errors.CombineErrors(err, perr)
	}
	if len(f.Chart) > 0 {
		if cerr := writeChart(f.Chart, report.Record); cerr != nil {
			err = errors.CombineErrors(err, cerr)
		}
	}
	return err
}

func writeChart(name string, r *results.Record) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := results.RenderChart(file, r); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func openAppend(name string) (*os.File, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
}
