//
// share.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package share defines secret shares, the circuit backend contract,
// and the wire vector operations built on top of it.
package share

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/p2p"
)

// Structural errors.
var (
	ErrUnpadded   = errors.New("unpadded share")
	ErrDegenerate = errors.New("zero-width share")
	ErrLanes      = errors.New("lane count mismatch")
)

// WireID identifies a wire in the backend's wire arena.
type WireID uint32

// Role specifies a computing party, or both of them as an output
// recipient.
type Role int

// Roles.
const (
	Server Role = iota
	Client
	All
)

var roles = map[Role]string{
	Server: "SERVER",
	Client: "CLIENT",
	All:    "ALL",
}

func (r Role) String() string {
	name, ok := roles[r]
	if ok {
		return name
	}
	return fmt.Sprintf("{Role %d}", int(r))
}

// Peer returns the other computing party.
func (r Role) Peer() Role {
	if r == Server {
		return Client
	}
	return Server
}

// Receives tests if the output revealed to r is visible for role.
func (r Role) Receives(role Role) bool {
	return r == All || r == role
}

// Sharing specifies the secret sharing scheme.
type Sharing int

// Sharing schemes.
const (
	Boolean Sharing = iota
	Arithmetic
)

func (s Sharing) String() string {
	switch s {
	case Boolean:
		return "bool"
	case Arithmetic:
		return "arith"
	default:
		return fmt.Sprintf("{Sharing %d}", int(s))
	}
}

// Share is a secret-shared value. Boolean shares have one wire per
// bit, the least significant bit first. Arithmetic shares have one
// wire carrying a value modulo 2^BitLength.
type Share struct {
	Sharing    Sharing
	BitLength  int
	ValueCount int
	Wires      []WireID
}

func (s *Share) String() string {
	return fmt.Sprintf("%s[%d]x%d", s.Sharing, s.BitLength, s.ValueCount)
}

// Validate checks that the share can be consumed by a gate.
func (s *Share) Validate() error {
	if s == nil || len(s.Wires) == 0 || s.BitLength < 1 {
		return ErrDegenerate
	}
	if s.ValueCount < 1 {
		return errors.Wrapf(ErrLanes, "share with %d lanes", s.ValueCount)
	}
	return nil
}

// Lanes returns the lane count of the result of a gate with the
// argument inputs. Single lane shares are broadcast to the lane
// count of the other input.
func Lanes(a, b *Share) (int, error) {
	switch {
	case a.ValueCount == b.ValueCount:
		return a.ValueCount, nil
	case a.ValueCount == 1:
		return b.ValueCount, nil
	case b.ValueCount == 1:
		return a.ValueCount, nil
	default:
		return 0, errors.Wrapf(ErrLanes, "%d != %d",
			a.ValueCount, b.ValueCount)
	}
}

// Circuit defines the gate construction contract of a sharing
// backend.
type Circuit interface {
	// Sharing returns the sharing scheme of the circuit.
	Sharing() Sharing

	// PutConstant adds a public constant of bits bits.
	PutConstant(bits int, value uint64) *Share

	// PutInput adds an input owned by the owner. The non-owner passes
	// values only for the lane count.
	PutInput(owner Role, values []uint64, bits int) (*Share, error)

	// PutMul adds a multiplication gate. The product is truncated to
	// the wider operand's width.
	PutMul(a, b *Share) (*Share, error)

	// PutOutput reveals the share to the role.
	PutOutput(s *Share, to Role) (*Share, error)

	// Decode returns the values of an output share after the circuit
	// is executed.
	Decode(out *Share) (bits, nvals int, values []uint64, err error)
}

// FloatCircuit is a Circuit with IEEE-754 binary64 multiplication.
type FloatCircuit interface {
	Circuit

	// PutFPMul adds a binary64 multiplication gate.
	PutFPMul(a, b *Share) (*Share, error)
}

// OTFactory creates oblivious transfer instances for the protocol.
type OTFactory func() (ot.OT, error)

// Executor runs the two-party protocol of a built circuit.
type Executor interface {
	// Exec executes the circuit with the peer over conn. It blocks
	// until the protocol completes.
	Exec(conn *p2p.Conn, role Role, oti OTFactory) error

	// Compute evaluates the circuit locally with all inputs known.
	Compute() error

	// NumGates returns the number of gates in the circuit.
	NumGates() int
}
