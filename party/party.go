//
// party.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package party implements a computing party: the connection to the
// peer, the circuit builders, and the protocol run.
package party

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/arith"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/mpcbench/share"
	"github.com/markkurossi/mpcbench/yao"
	"github.com/markkurossi/text/superscript"
)

// Party implements one side of the two-party computation.
type Party struct {
	// Timing collects the build and protocol phase samples.
	Timing *circuit.Timing

	config Config
	env    *env.Config
	conn   *p2p.Conn
	state  State
	err    error
	yao    *yao.Circuit
	arith  *arith.Circuit
}

// New creates a party and connects it to the peer. The SERVER
// listens at the configured endpoint and the CLIENT dials it.
func New(cfg Config) (*Party, error) {
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}
	var conn *p2p.Conn
	var err error

	if cfg.Role == share.Server {
		conn, err = p2p.Listen(cfg.Endpoint())
	} else {
		conn, err = p2p.Dial(cfg.Endpoint(), cfg.DialRetries, cfg.dialDelay())
	}
	if err != nil {
		return nil, err
	}
	return newParty(cfg, conn), nil
}

// NewWithConn creates a party over an open connection.
func NewWithConn(cfg Config, conn *p2p.Conn) (*Party, error) {
	if err := cfg.Validate(false); err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errors.New("party: no connection")
	}
	return newParty(cfg, conn), nil
}

func newParty(cfg Config, conn *p2p.Conn) *Party {
	timing := circuit.NewTiming()
	timing.Track(conn.Stats)

	return &Party{
		Timing: timing,
		config: cfg,
		env:    cfg.env(),
		conn:   conn,
		state:  Configuring,
	}
}

// Role returns the party's role.
func (p *Party) Role() share.Role {
	return p.config.Role
}

// State returns the current session state.
func (p *Party) State() State {
	return p.state
}

// Stats returns the I/O statistics of the peer connection.
func (p *Party) Stats() p2p.IOStats {
	return p.conn.Stats
}

// NumGates returns the number of gates in the party's circuits.
func (p *Party) NumGates() int {
	var count int
	if p.yao != nil {
		count += p.yao.NumGates()
	}
	if p.arith != nil {
		count += p.arith.NumGates()
	}
	return count
}

// IDString returns the party ID as a superscript string.
func (p *Party) IDString() string {
	return superscript.Itoa(int(p.config.Role))
}

// Debugf prints a debug message prefixed with the party ID if
// verbose output is enabled.
func (p *Party) Debugf(format string, a ...interface{}) {
	if !p.config.Verbose {
		return
	}
	fmt.Printf("P%s: %s", p.IDString(), fmt.Sprintf(format, a...))
}

// Circuit returns the circuit builder of the sharing scheme. The
// builder is created on first use.
func (p *Party) Circuit(sharing share.Sharing) (share.Circuit, error) {
	if err := p.expect("circuit", Configuring, Building); err != nil {
		return nil, err
	}
	var c share.Circuit

	switch sharing {
	case share.Boolean:
		if p.yao == nil {
			p.yao = yao.NewCircuit(p.env)
			p.yao.Timing = p.Timing
		}
		c = p.yao

	case share.Arithmetic:
		if p.arith == nil {
			p.arith = arith.NewCircuit(p.env)
			p.arith.Timing = p.Timing
		}
		c = p.arith

	default:
		return nil, errors.Newf("party: unsupported sharing %s", sharing)
	}
	if p.state == Configuring {
		p.Debugf("building %s circuit\n", sharing)
		p.state = Building
	}
	return c, nil
}

// Exec runs the protocol of each created circuit with the peer,
// boolean sharing first. It blocks until the protocol completes. A
// failed execution is final for the session.
func (p *Party) Exec() error {
	if err := p.expect("exec", Building); err != nil {
		return err
	}
	p.state = Executing
	p.Timing.Sample("Build", nil)

	var executors []share.Executor
	if p.yao != nil {
		executors = append(executors, p.yao)
	}
	if p.arith != nil {
		executors = append(executors, p.arith)
	}
	for _, e := range executors {
		p.Debugf("executing %d gates\n", e.NumGates())
		if err := e.Exec(p.conn, p.config.Role, p.env.NewOT); err != nil {
			p.err = errors.Wrapf(err, "P%s", p.IDString())
			return p.err
		}
	}
	return nil
}

// Decode returns the values of the output share.
func (p *Party) Decode(out *share.Share) (bits, nvals int, values []uint64,
	err error) {

	if err = p.expect("decode", Executing, Decoded); err != nil {
		return
	}
	if out == nil {
		err = errors.New("party: no output share")
		return
	}
	var c share.Circuit
	switch out.Sharing {
	case share.Boolean:
		if p.yao != nil {
			c = p.yao
		}
	case share.Arithmetic:
		if p.arith != nil {
			c = p.arith
		}
	}
	if c == nil {
		err = errors.Newf("party: no %s circuit for output %s",
			out.Sharing, out)
		return
	}
	bits, nvals, values, err = c.Decode(out)
	if err != nil {
		return
	}
	p.state = Decoded
	return
}

// Close closes the peer connection.
func (p *Party) Close() error {
	return p.conn.Close()
}
