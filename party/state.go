//
// state.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrState is returned when a party operation is called out of
// order.
var ErrState = errors.New("invalid party state")

// State specifies the party session state.
type State int

// Party states.
const (
	Configuring State = iota
	Building
	Executing
	Decoded
)

var states = map[State]string{
	Configuring: "Configuring",
	Building:    "Building",
	Executing:   "Executing",
	Decoded:     "Decoded",
}

func (s State) String() string {
	name, ok := states[s]
	if ok {
		return name
	}
	return fmt.Sprintf("{State %d}", int(s))
}

func (p *Party) expect(op string, allowed ...State) error {
	if p.err != nil {
		return errors.Wrapf(ErrState, "%s after failed execution", op)
	}
	for _, s := range allowed {
		if p.state == s {
			return nil
		}
	}
	return errors.Wrapf(ErrState, "%s in state %s", op, p.state)
}
