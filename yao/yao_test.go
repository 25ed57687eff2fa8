//
// yao_test.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package yao

import (
	"math"
	"testing"

	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/share"
	"github.com/stretchr/testify/require"
)

type builder func(c *Circuit, role share.Role) (*share.Share, error)

type party struct {
	circuit *Circuit
	out     *share.Share
	err     error
}

func execute(t *testing.T, threads int, build builder) [2]*party {
	t.Helper()

	c0, c1 := p2p.Pipe()
	conns := [2]*p2p.Conn{c0, c1}

	var parties [2]*party
	done := make(chan int)

	for i := range parties {
		role := share.Role(i)
		p := new(party)
		parties[i] = p

		go func() {
			defer func() {
				conns[role].Close()
				done <- int(role)
			}()
			config := &env.Config{
				Threads: threads,
			}
			p.circuit = NewCircuit(config)
			p.out, p.err = build(p.circuit, role)
			if p.err != nil {
				return
			}
			p.err = p.circuit.Exec(conns[role], role, config.NewOT)
		}()
	}
	<-done
	<-done

	return parties
}

func decode(t *testing.T, p *party) []uint64 {
	t.Helper()
	require.NoError(t, p.err)
	_, _, values, err := p.circuit.Decode(p.out)
	require.NoError(t, err)
	return values
}

// inputs adds a from SERVER and b from CLIENT. The non-owner passes
// zero values of the same lane count.
func inputs(c *Circuit, role share.Role, a, b []uint64, bits int) (
	*share.Share, *share.Share, error) {

	av := make([]uint64, len(a))
	bv := make([]uint64, len(b))
	if role == share.Server {
		copy(av, a)
	} else {
		copy(bv, b)
	}
	sa, err := c.PutInput(share.Server, av, bits)
	if err != nil {
		return nil, nil, err
	}
	sb, err := c.PutInput(share.Client, bv, bits)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

func TestMul(t *testing.T) {
	a := []uint64{0xdeadbeef12345678}
	b := []uint64{0x0123456789abcdef}

	parties := execute(t, 1, func(c *Circuit, role share.Role) (
		*share.Share, error) {

		sa, sb, err := inputs(c, role, a, b, 64)
		if err != nil {
			return nil, err
		}
		m, err := c.PutMul(sa, sb)
		if err != nil {
			return nil, err
		}
		return c.PutOutput(m, share.All)
	})
	for _, p := range parties {
		require.Equal(t, []uint64{a[0] * b[0]}, decode(t, p))
	}
}

func TestFPMul(t *testing.T) {
	a := []uint64{math.Float64bits(2.0), math.Float64bits(-0.1)}
	b := []uint64{math.Float64bits(1.5), math.Float64bits(3.3)}

	parties := execute(t, 2, func(c *Circuit, role share.Role) (
		*share.Share, error) {

		sa, sb, err := inputs(c, role, a, b, 64)
		if err != nil {
			return nil, err
		}
		m, err := c.PutFPMul(sa, sb)
		if err != nil {
			return nil, err
		}
		return c.PutOutput(m, share.All)
	})
	for _, p := range parties {
		values := decode(t, p)
		require.Len(t, values, 2)
		require.Equal(t, 3.0, math.Float64frombits(values[0]))
		require.Equal(t,
			math.Float64frombits(a[1])*math.Float64frombits(b[1]),
			math.Float64frombits(values[1]))
	}
}

func TestLanes(t *testing.T) {
	a := []uint64{1, 2, 3, 4, 5}
	b := []uint64{10, 20, 30, 40, 50}

	parties := execute(t, 3, func(c *Circuit, role share.Role) (
		*share.Share, error) {

		sa, sb, err := inputs(c, role, a, b, 16)
		if err != nil {
			return nil, err
		}
		m, err := c.PutMul(sa, sb)
		if err != nil {
			return nil, err
		}
		// Constants are broadcast to all lanes.
		m, err = c.PutMul(m, c.PutConstant(16, 3))
		if err != nil {
			return nil, err
		}
		return c.PutOutput(m, share.All)
	})
	for _, p := range parties {
		require.Equal(t, []uint64{30, 120, 270, 480, 750}, decode(t, p))
	}
}

func mustMul(t *testing.T, c *Circuit, a, b *share.Share) *share.Share {
	m, err := c.PutMul(a, b)
	require.NoError(t, err)
	return m
}

func TestOutputRole(t *testing.T) {
	for _, to := range []share.Role{share.Server, share.Client} {
		parties := execute(t, 1, func(c *Circuit, role share.Role) (
			*share.Share, error) {

			sa, sb, err := inputs(c, role, []uint64{7}, []uint64{6}, 8)
			if err != nil {
				return nil, err
			}
			m, err := c.PutMul(sa, sb)
			if err != nil {
				return nil, err
			}
			return c.PutOutput(m, to)
		})
		for role, p := range parties {
			require.NoError(t, p.err)
			_, _, values, err := p.circuit.Decode(p.out)
			if share.Role(role) == to {
				require.NoError(t, err)
				require.Equal(t, []uint64{42}, values)
			} else {
				require.Error(t, err)
			}
		}
	}
}

func TestDigestMismatch(t *testing.T) {
	parties := execute(t, 1, func(c *Circuit, role share.Role) (
		*share.Share, error) {

		sa, sb, err := inputs(c, role, []uint64{7}, []uint64{6}, 8)
		if err != nil {
			return nil, err
		}
		m, err := c.PutMul(sa, sb)
		if err != nil {
			return nil, err
		}
		if role == share.Client {
			m, err = c.PutMul(m, sb)
			if err != nil {
				return nil, err
			}
		}
		return c.PutOutput(m, share.All)
	})
	for _, p := range parties {
		require.Error(t, p.err)
	}
}

func TestExecMatchesCompute(t *testing.T) {
	a := []uint64{3, 5}
	b := []uint64{7, 11}

	build := func(c *Circuit, role share.Role) (*share.Share, error) {
		sa, sb, err := inputs(c, role, a, b, 32)
		if err != nil {
			return nil, err
		}
		m := sa
		for i := 0; i < 4; i++ {
			m, err = c.PutMul(m, sb)
			if err != nil {
				return nil, err
			}
		}
		return c.PutOutput(m, share.All)
	}

	// Clear reference with all inputs known.
	ref := NewCircuit(&env.Config{})
	sa, err := ref.PutInput(share.Server, a, 32)
	require.NoError(t, err)
	sb, err := ref.PutInput(share.Client, b, 32)
	require.NoError(t, err)
	m := sa
	for i := 0; i < 4; i++ {
		m = mustMul(t, ref, m, sb)
	}
	out, err := ref.PutOutput(m, share.All)
	require.NoError(t, err)
	require.NoError(t, ref.Compute())
	_, _, expected, err := ref.Decode(out)
	require.NoError(t, err)
	require.Equal(t, []uint64{3 * 7 * 7 * 7 * 7, 5 * 11 * 11 * 11 * 11},
		expected)

	for _, p := range execute(t, 2, build) {
		require.Equal(t, expected, decode(t, p))
	}
}

func TestBuilderErrors(t *testing.T) {
	c := NewCircuit(&env.Config{})

	_, err := c.PutInput(share.All, []uint64{1}, 8)
	require.Error(t, err)
	_, err = c.PutInput(share.Server, nil, 8)
	require.ErrorIs(t, err, share.ErrLanes)
	_, err = c.PutInput(share.Server, []uint64{1}, 65)
	require.Error(t, err)

	a, err := c.PutInput(share.Server, []uint64{1, 2}, 8)
	require.NoError(t, err)
	b, err := c.PutInput(share.Client, []uint64{1, 2}, 8)
	require.NoError(t, err)
	_, err = c.PutInput(share.Client, []uint64{1, 2, 3}, 8)
	require.ErrorIs(t, err, share.ErrLanes)

	_, err = c.PutMul(a, &share.Share{})
	require.ErrorIs(t, err, share.ErrDegenerate)

	_, err = c.PutFPMul(a, b)
	require.Error(t, err)

	_, _, _, err = c.Decode(a)
	require.Error(t, err)
}
