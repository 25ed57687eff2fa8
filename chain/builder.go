//
// builder.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package chain

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/share"
)

// Default chain parameters.
const (
	DefaultDepth     = 999
	DefaultPrecision = 15
)

// Builder builds the chain m0 = a*b, m_k = m_{k-1}*b for k in
// 1..Depth, and reveals m_Depth to both parties.
type Builder struct {
	Domain    Domain
	Depth     int
	Precision int
}

// NewBuilder creates a builder with the default depth and precision.
func NewBuilder(domain Domain) *Builder {
	return &Builder{
		Domain:    domain,
		Depth:     DefaultDepth,
		Precision: DefaultPrecision,
	}
}

// multiplier implements the chain steps of one domain.
type multiplier interface {
	prepare(a, b *share.Share) (*share.Share, *share.Share, error)
	mul(a, b *share.Share) (*share.Share, error)
	finish(m *share.Share) (*share.Share, error)
}

func (b *Builder) multiplier(c share.Circuit) (multiplier, error) {
	if c.Sharing() != b.Domain.Sharing() {
		return nil, errors.Newf("domain %s needs %s sharing, got %s",
			b.Domain, b.Domain.Sharing(), c.Sharing())
	}
	switch b.Domain {
	case FixedPoint:
		return &fixed{c: c}, nil

	case FloatEmulated:
		fc, ok := c.(share.FloatCircuit)
		if !ok {
			return nil, errors.New("circuit has no float multiplication")
		}
		return &float{c: fc}, nil

	case ScaledFixedPoint:
		if b.Precision < 1 {
			return nil, errors.Newf("invalid precision %d", b.Precision)
		}
		return &scaled{c: c, prec: b.Precision}, nil

	default:
		return nil, errors.Newf("unsupported domain %s", b.Domain)
	}
}

// Build builds the chain over the inputs a and b and returns the
// output share.
func (b *Builder) Build(c share.Circuit, x, y *share.Share) (
	*share.Share, error) {

	if b.Depth < 0 {
		return nil, errors.Newf("invalid depth %d", b.Depth)
	}
	if err := x.Validate(); err != nil {
		return nil, err
	}
	if err := y.Validate(); err != nil {
		return nil, err
	}
	m, err := b.multiplier(c)
	if err != nil {
		return nil, err
	}
	x, y, err = m.prepare(x, y)
	if err != nil {
		return nil, err
	}
	r, err := m.mul(x, y)
	if err != nil {
		return nil, err
	}
	for k := 1; k <= b.Depth; k++ {
		r, err = m.mul(r, y)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", k)
		}
	}
	r, err = m.finish(r)
	if err != nil {
		return nil, err
	}
	return c.PutOutput(r, share.All)
}

type fixed struct {
	c share.Circuit
}

func (m *fixed) prepare(a, b *share.Share) (*share.Share, *share.Share,
	error) {

	return a, b, nil
}

func (m *fixed) mul(a, b *share.Share) (*share.Share, error) {
	return m.c.PutMul(a, b)
}

func (m *fixed) finish(r *share.Share) (*share.Share, error) {
	return r, nil
}

type float struct {
	c share.FloatCircuit
}

func (m *float) prepare(a, b *share.Share) (*share.Share, *share.Share,
	error) {

	if a.BitLength != 64 || b.BitLength != 64 {
		return nil, nil, errors.Newf("float chain needs 64-bit inputs: %d, %d",
			a.BitLength, b.BitLength)
	}
	return a, b, nil
}

func (m *float) mul(a, b *share.Share) (*share.Share, error) {
	return m.c.PutFPMul(a, b)
}

func (m *float) finish(r *share.Share) (*share.Share, error) {
	return r, nil
}

// scaled computes with the inputs scaled by 2^prec. Each product is
// scaled back with a right shift which narrows it by prec bits; the
// next multiplication zero-extends it to the operand width.
type scaled struct {
	c    share.Circuit
	prec int
}

func (m *scaled) prepare(a, b *share.Share) (*share.Share, *share.Share,
	error) {

	for _, s := range []*share.Share{a, b} {
		if 2*m.prec >= s.BitLength {
			return nil, nil, errors.Newf("precision %d too large for %d bits",
				m.prec, s.BitLength)
		}
	}
	sa, err := share.LeftShift(m.c, a, m.prec)
	if err != nil {
		return nil, nil, err
	}
	sb, err := share.LeftShift(m.c, b, m.prec)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

func (m *scaled) mul(a, b *share.Share) (*share.Share, error) {
	p, err := m.c.PutMul(a, b)
	if err != nil {
		return nil, err
	}
	return share.LogicalRightShift(m.c, p, m.prec)
}

func (m *scaled) finish(r *share.Share) (*share.Share, error) {
	return share.LogicalRightShift(m.c, r, m.prec)
}
