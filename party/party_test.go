//
// party_test.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/chain"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/share"
	"github.com/stretchr/testify/require"
)

type session func(p *Party) ([]*share.Share, error)

type result struct {
	party *Party
	outs  []*share.Share
	err   error
}

func run(t *testing.T, s session) [2]*result {
	t.Helper()

	c0, c1 := p2p.Pipe()
	conns := [2]*p2p.Conn{c0, c1}

	var results [2]*result
	done := make(chan bool)

	for i := range results {
		r := new(result)
		results[i] = r
		role := share.Role(i)

		go func() {
			defer func() {
				done <- true
			}()
			r.party, r.err = NewWithConn(Config{
				Role: role,
			}, conns[role])
			if r.err != nil {
				conns[role].Close()
				return
			}
			defer r.party.Close()

			r.outs, r.err = s(r.party)
			if r.err != nil {
				return
			}
			r.err = r.party.Exec()
		}()
	}
	<-done
	<-done

	return results
}

// inputs adds a and b owned by the owners. The non-owner passes zero
// values for the lane count.
func inputs(p *Party, c share.Circuit, owners [2]share.Role, a, b []uint64,
	bits int) (*share.Share, *share.Share, error) {

	values := func(owner share.Role, v []uint64) []uint64 {
		if owner == p.Role() {
			return v
		}
		return make([]uint64, len(v))
	}
	x, err := c.PutInput(owners[0], values(owners[0], a), bits)
	if err != nil {
		return nil, nil, err
	}
	y, err := c.PutInput(owners[1], values(owners[1], b), bits)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func chainSession(domain chain.Domain, depth int, owners [2]share.Role,
	a, b []uint64) session {

	return func(p *Party) ([]*share.Share, error) {
		c, err := p.Circuit(domain.Sharing())
		if err != nil {
			return nil, err
		}
		x, y, err := inputs(p, c, owners, a, b, 64)
		if err != nil {
			return nil, err
		}
		builder := chain.NewBuilder(domain)
		builder.Depth = depth
		out, err := builder.Build(c, x, y)
		if err != nil {
			return nil, err
		}
		return []*share.Share{out}, nil
	}
}

func decodeAll(t *testing.T, results [2]*result) [2][][]uint64 {
	t.Helper()

	var values [2][][]uint64
	for i, r := range results {
		require.NoError(t, r.err)
		require.Equal(t, Executing, r.party.State())
		for _, out := range r.outs {
			_, _, v, err := r.party.Decode(out)
			require.NoError(t, err)
			values[i] = append(values[i], v)
		}
		require.Equal(t, Decoded, r.party.State())
	}
	return values
}

func TestFixedChain(t *testing.T) {
	results := run(t, chainSession(chain.FixedPoint, 2,
		[2]share.Role{share.Server, share.Client},
		[]uint64{2}, []uint64{3}))

	values := decodeAll(t, results)
	for _, v := range values {
		require.Equal(t, []uint64{54}, v[0])
	}
}

func TestFloatChain(t *testing.T) {
	results := run(t, chainSession(chain.FloatEmulated, 1,
		[2]share.Role{share.Server, share.Client},
		chain.EncodeAll([]float64{2.0}), chain.EncodeAll([]float64{1.5})))

	values := decodeAll(t, results)
	for _, v := range values {
		require.Equal(t, []float64{4.5}, chain.DecodeAll[float64](v[0]))
	}
}

func TestRoleSymmetry(t *testing.T) {
	a := []uint64{2, 7, 0xffffffff}
	b := []uint64{3, 11, 0x10001}

	for _, domain := range []chain.Domain{chain.FixedPoint,
		chain.ScaledFixedPoint} {

		normal := decodeAll(t, run(t, chainSession(domain, 3,
			[2]share.Role{share.Server, share.Client}, a, b)))
		swapped := decodeAll(t, run(t, chainSession(domain, 3,
			[2]share.Role{share.Client, share.Server}, a, b)))

		require.Equal(t, normal, swapped, "domain %s", domain)
		require.Equal(t, normal[0], normal[1])
	}
}

func TestMixedSharing(t *testing.T) {
	owners := [2]share.Role{share.Server, share.Client}

	results := run(t, func(p *Party) ([]*share.Share, error) {
		fixed, err := chainSession(chain.FixedPoint, 1, owners,
			[]uint64{5}, []uint64{4})(p)
		if err != nil {
			return nil, err
		}
		float, err := chainSession(chain.FloatEmulated, 1, owners,
			chain.EncodeAll([]float64{2.5}),
			chain.EncodeAll([]float64{4.0}))(p)
		if err != nil {
			return nil, err
		}
		return append(fixed, float...), nil
	})

	values := decodeAll(t, results)
	for _, v := range values {
		require.Equal(t, []uint64{80}, v[0])
		require.Equal(t, []float64{40}, chain.DecodeAll[float64](v[1]))
	}
}

func TestStateOrder(t *testing.T) {
	c0, _ := p2p.Pipe()
	p, err := NewWithConn(Config{Role: share.Server}, c0)
	require.NoError(t, err)
	require.Equal(t, Configuring, p.State())

	require.ErrorIs(t, p.Exec(), ErrState)
	_, _, _, err = p.Decode(&share.Share{})
	require.ErrorIs(t, err, ErrState)

	c, err := p.Circuit(share.Arithmetic)
	require.NoError(t, err)
	require.Equal(t, Building, p.State())

	again, err := p.Circuit(share.Arithmetic)
	require.NoError(t, err)
	require.Same(t, c, again)

	_, _, _, err = p.Decode(&share.Share{})
	require.ErrorIs(t, err, ErrState)

	_, err = p.Circuit(share.Sharing(7))
	require.Error(t, err)
}

func TestFailedExec(t *testing.T) {
	// The parties build different circuits so the handshake fails.
	results := run(t, func(p *Party) ([]*share.Share, error) {
		depth := 1
		if p.Role() == share.Client {
			depth = 2
		}
		return chainSession(chain.FixedPoint, depth,
			[2]share.Role{share.Server, share.Client},
			[]uint64{2}, []uint64{3})(p)
	})
	for _, r := range results {
		require.Error(t, r.err)
		_, _, _, err := r.party.Decode(r.outs[0])
		require.ErrorIs(t, err, ErrState)
		require.ErrorIs(t, r.party.Exec(), ErrState)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		cfg   Config
		field string
	}{
		{Config{Role: share.All, Port: DefaultPort}, "role"},
		{Config{Role: share.Role(-1), Port: DefaultPort}, "role"},
		{Config{Role: share.Server, Port: -1}, "port"},
		{Config{Role: share.Server, Port: 70000}, "port"},
		{Config{Role: share.Server, Port: DefaultPort,
			SecurityLevel: 100}, "security level"},
		{Config{Role: share.Client, Port: DefaultPort}, "address"},
		{Config{Role: share.Client, Port: DefaultPort,
			Address: DefaultAddress, Threads: -1}, "thread count"},
		{Config{Role: share.Client, Port: DefaultPort,
			Address: DefaultAddress, DialRetries: -2}, "dial retries"},
	}
	for _, test := range tests {
		_, err := New(test.cfg)
		var cerr *ConfigError
		require.True(t, errors.As(err, &cerr), "%+v: %v", test.cfg, err)
		require.Equal(t, test.field, cerr.Field)
	}

	_, err := NewWithConn(Config{Role: share.Server}, nil)
	require.Error(t, err)
}

func TestEndpoint(t *testing.T) {
	cfg := Config{
		Address: "::1",
		Port:    DefaultPort,
	}
	require.Equal(t, "[::1]:7766", cfg.Endpoint())

	cfg = Config{
		Role:    share.Client,
		Address: DefaultAddress,
	}
	require.NoError(t, cfg.Validate(true))
	require.Equal(t, "127.0.0.1:7766", cfg.Endpoint())
}

func TestTiming(t *testing.T) {
	results := run(t, chainSession(chain.FixedPoint, 2,
		[2]share.Role{share.Server, share.Client},
		[]uint64{2}, []uint64{3}))
	decodeAll(t, results)

	for _, r := range results {
		var labels []string
		for _, s := range r.party.Timing.Samples {
			labels = append(labels, s.Label)
		}
		require.Equal(t, []string{"Build", "Init", "Triples", "Eval",
			"Result"}, labels)

		var buf bytes.Buffer
		r.party.Timing.Print(&buf)
		require.Contains(t, buf.String(), "Triples")
		require.Positive(t, r.party.Stats().Sum())
	}
}
