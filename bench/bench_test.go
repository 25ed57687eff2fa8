//
// bench_test.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package bench

import (
	"bytes"
	"flag"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/chain"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/party"
	"github.com/markkurossi/mpcbench/share"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	f, err := ParseFlags(flag.NewFlagSet("test", flag.ContinueOnError), args)
	require.NoError(t, err)
	return f
}

type output[T chain.Number] struct {
	report *Report[T]
	out    bytes.Buffer
	err    error
}

// execute runs both parties over a pipe with the same arguments.
func execute[T chain.Number](t *testing.T, args ...string) [2]*output[T] {
	t.Helper()

	c0, c1 := p2p.Pipe()
	conns := [2]*p2p.Conn{c0, c1}

	var outputs [2]*output[T]
	done := make(chan bool)

	for i := range outputs {
		o := new(output[T])
		outputs[i] = o

		f := parse(t, append([]string{"-r", []string{"0", "1"}[i]}, args...)...)
		opts, err := NewOptions[T](f)
		require.NoError(t, err)

		go func() {
			defer func() {
				done <- true
			}()
			p, err := party.NewWithConn(opts.Party, conns[i])
			if err != nil {
				o.err = err
				conns[i].Close()
				return
			}
			defer p.Close()
			o.report, o.err = Run(p, opts, &o.out)
		}()
	}
	<-done
	<-done

	return outputs
}

func TestFlagDefaults(t *testing.T) {
	f := parse(t)
	require.Equal(t, -1, f.Role)
	require.Equal(t, 1, f.Lanes)
	require.Equal(t, 64, f.Bits)
	require.Equal(t, 128, f.Security)
	require.Equal(t, "127.0.0.1", f.Address)
	require.Equal(t, 7766, f.Port)
	require.Equal(t, 999, f.Depth)
	require.Equal(t, 15, f.Precision)

	cfg := parse(t, "-r", "1", "-p", "0").Party()
	require.NoError(t, cfg.Validate(true))
	require.Equal(t, "127.0.0.1:7766", cfg.Endpoint())

	_, err := ParseFlags(flag.NewFlagSet("test", flag.ContinueOnError),
		[]string{"-r", "0", "extra"})
	require.Error(t, err)
}

func TestChainDomain(t *testing.T) {
	tests := []struct {
		args   []string
		domain chain.Domain
	}{
		{[]string{"-x", "2", "-y", "3"}, chain.FixedPoint},
		{[]string{"-x", "0xbeef", "-y", "3"}, chain.FixedPoint},
		{[]string{"-x", "2.0", "-y", "3"}, chain.FloatEmulated},
		{[]string{"-x", "2", "-y", "1e3"}, chain.FloatEmulated},
		{[]string{"-x", "-Inf", "-y", "1"}, chain.FloatEmulated},
		{[]string{"-x", "0x1p-2", "-y", "1"}, chain.FloatEmulated},
		{[]string{"-t", "scaled", "-x", "2", "-y", "3"},
			chain.ScaledFixedPoint},
		{[]string{"-t", "FLOAT"}, chain.FloatEmulated},
	}
	for _, test := range tests {
		domain, err := parse(t, test.args...).ChainDomain()
		require.NoError(t, err)
		require.Equal(t, test.domain, domain, "%v", test.args)
	}
	_, err := parse(t, "-t", "complex").ChainDomain()
	require.Error(t, err)
}

func TestOptionErrors(t *testing.T) {
	check := func(err error, field string) {
		t.Helper()
		var cerr *party.ConfigError
		require.True(t, errors.As(err, &cerr), "%v", err)
		require.Equal(t, field, cerr.Field)
	}

	_, err := NewOptions[float64](parse(t, "-x", "2.0", "-b", "32"))
	check(err, "bit length")

	_, err = NewOptions[uint64](parse(t, "-x", "2.0"))
	check(err, "domain")

	_, err = NewOptions[uint64](parse(t, "-x", "2", "-n", "0"))
	check(err, "lane count")

	_, err = NewOptions[uint64](parse(t, "-x", "2", "-b", "65"))
	check(err, "bit length")

	_, err = NewOptions[uint64](parse(t, "-x", "two", "-t", "fixed"))
	check(err, "input a")

	_, err = NewOptions[uint64](parse(t, "-t", "scaled", "-b", "30"))
	check(err, "precision")

	_, err = NewOptions[uint64](parse(t, "-d", "-1"))
	check(err, "depth")

	_, err = NewOptions[uint64](parse(t, "-t", "nope"))
	check(err, "domain")
}

func TestMainConfigError(t *testing.T) {
	var buf bytes.Buffer
	var cerr *party.ConfigError

	err := Main([]string{"-r", "5", "-x", "2", "-y", "3"}, &buf)
	require.True(t, errors.As(err, &cerr), "%v", err)
	require.Equal(t, "role", cerr.Field)

	err = Main([]string{"-r", "1", "-p", "70000"}, &buf)
	require.True(t, errors.As(err, &cerr), "%v", err)
	require.Equal(t, "port", cerr.Field)

	err = Main([]string{"-r", "0", "-s", "64"}, &buf)
	require.True(t, errors.As(err, &cerr), "%v", err)
	require.Equal(t, "security level", cerr.Field)
}

func TestOwners(t *testing.T) {
	opts := &Options[uint64]{}
	require.Equal(t, [2]share.Role{share.Server, share.Client}, opts.Owners())
	opts.Swap = true
	require.Equal(t, [2]share.Role{share.Client, share.Server}, opts.Owners())
}

func TestNumbers(t *testing.T) {
	v, err := ParseNumber[uint64]("0x10")
	require.NoError(t, err)
	require.Equal(t, uint64(16), v)

	f, err := ParseNumber[float64]("1.5")
	require.NoError(t, err)
	require.Equal(t, 1.5, f)

	require.Equal(t, "4.500000000000000", FormatNumber(4.5))
	require.Equal(t, "18446744073709551615", FormatNumber(uint64(math.MaxUint64)))
}

func TestRunFixed(t *testing.T) {
	outputs := execute[uint64](t, "-x", "2", "-y", "3", "-d", "2")
	for _, o := range outputs {
		require.NoError(t, o.err)
		require.Equal(t, []uint64{54}, o.report.Values)
		require.Contains(t, o.out.String(),
			"MUL RES: 54 = 2 * 3 | nv: 1 bitlen: 64\n")
		require.True(t, o.report.Record.Verified)
		require.Equal(t, []string{"54"}, o.report.Record.Results)
	}
	require.Equal(t, "SERVER", outputs[0].report.Record.Role)
	require.Equal(t, "CLIENT", outputs[1].report.Record.Role)
}

func TestRunFloat(t *testing.T) {
	outputs := execute[float64](t, "-x", "2.0", "-y", "1.5", "-d", "1",
		"-n", "3")
	for _, o := range outputs {
		require.NoError(t, o.err)
		require.Equal(t, []float64{4.5, 4.5, 4.5}, o.report.Values)
		require.Equal(t, 3, strings.Count(o.out.String(),
			"MUL RES: 4.500000000000000 = 2.000000000000000 * "+
				"1.500000000000000 | nv: 3 bitlen: 64\n"))
		require.True(t, strings.HasPrefix(o.out.String(),
			"FLOATING POINT RUNNING"))
	}
}

func TestRunScaled(t *testing.T) {
	outputs := execute[uint64](t, "-t", "scaled", "-x", "2", "-y", "3",
		"-d", "1", "-b", "32", "-prec", "4")
	for _, o := range outputs {
		require.NoError(t, o.err)
		require.Equal(t, 24, o.report.Bits)
		require.Equal(t, []uint64{18}, o.report.Values)
		require.Equal(t, 4, o.report.Record.Precision)
	}
}

func TestRunSwap(t *testing.T) {
	args := []string{"-x", "7", "-y", "0xffffffff", "-d", "3", "-b", "40"}

	normal := execute[uint64](t, args...)
	swapped := execute[uint64](t, append(args, "-swap")...)

	for i := range normal {
		require.NoError(t, normal[i].err)
		require.NoError(t, swapped[i].err)
		require.Equal(t, normal[i].report.Values, swapped[i].report.Values)
		require.Equal(t, normal[i].report.Expected, normal[i].report.Values[0])
	}
}
